package zoho

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	commonhttp "instantcredit-agents/internal/common/http"
)

// CRMClient talks to the Zoho CRM v3 API. It is the production backend
// for KYC checks: a customer with a CRM contact on file counts as
// identity-verified.
type CRMClient struct {
	oauthToken string
	baseURL    string
	httpClient *commonhttp.Client
}

type Contact struct {
	ID        string `json:"id,omitempty"`
	Email     string `json:"Email"`
	FirstName string `json:"First_Name"`
	LastName  string `json:"Last_Name"`
	Phone     string `json:"Phone,omitempty"`
}

type searchContactsResponse struct {
	Data []Contact `json:"data"`
}

func NewCRMClient(oauthToken, baseURL string) *CRMClient {
	if baseURL == "" {
		baseURL = "https://www.zohoapis.com/crm/v3"
	}
	return &CRMClient{
		oauthToken: oauthToken,
		baseURL:    baseURL,
		httpClient: commonhttp.NewClient(30 * time.Second),
	}
}

// SearchContactByEmail returns the first CRM contact matching the email,
// or nil when none exists.
func (c *CRMClient) SearchContactByEmail(ctx context.Context, email string) (*Contact, error) {
	u := fmt.Sprintf("%s/Contacts/search?email=%s", c.baseURL, url.QueryEscape(email))

	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+c.oauthToken)

	resp, err := c.httpClient.DoWithContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	// Zoho returns 204 when the search has no hits.
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("zoho search returned status %d: %s", resp.StatusCode, string(body))
	}

	var result searchContactsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result.Data) == 0 {
		return nil, nil
	}
	return &result.Data[0], nil
}
