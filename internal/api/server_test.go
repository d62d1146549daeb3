package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instantcredit-agents/internal/agents/sales"
	uwagent "instantcredit-agents/internal/agents/underwriting"
	"instantcredit-agents/internal/agents/verification"
	"instantcredit-agents/internal/common/database"
	"instantcredit-agents/internal/common/logger"
	"instantcredit-agents/internal/creditbureau"
	"instantcredit-agents/internal/directory"
	"instantcredit-agents/internal/dispatcher"
	"instantcredit-agents/internal/kyc"
	"instantcredit-agents/internal/models"
	"instantcredit-agents/internal/session"
	uw "instantcredit-agents/internal/underwriting"
)

func newTestServer(t *testing.T) *httptest.Server {
	ts, _ := newTestServerWithRedis(t)
	return ts
}

func newTestServerWithRedis(t *testing.T) (*httptest.Server, *miniredis.Miniredis) {
	t.Helper()

	log := logger.NewNoOpLogger()
	dir := directory.NewInMemory()
	engine := uw.NewEngine(log)
	verifier := kyc.NewSimulatedWithSource(0.9, func() float64 { return 0 }, log)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	rdb := database.NewRedisFromClient(client)

	server := NewServer(Options{
		Dispatcher: dispatcher.New(
			sales.NewHandler(log),
			verification.NewHandler(dir, verifier, log),
			uwagent.NewHandler(dir, engine, log),
			log,
		),
		Sessions:  session.NewStore(rdb, time.Hour, log),
		Directory: dir,
		Bureau:    creditbureau.NewService(dir, log),
		Engine:    engine,
		Verifier:  verifier,
		Redis:     rdb,
		Logger:    log,
	})

	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)
	return ts, mr
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStartConversation_KnownCustomer(t *testing.T) {
	ts := newTestServer(t)

	resp, body := postJSON(t, ts, "/api/v1/conversation/start", map[string]string{"customerId": "CUST001"})

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, body["conversationId"])
	assert.Contains(t, body["message"], "Rahul Sharma")
	assert.Equal(t, string(models.StageGreeting), body["stage"])
}

func TestStartConversation_UnknownCustomer(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := postJSON(t, ts, "/api/v1/conversation/start", map[string]string{"customerId": "CUST404"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStartConversation_RandomCustomer(t *testing.T) {
	ts := newTestServer(t)

	resp, body := postJSON(t, ts, "/api/v1/conversation/start", map[string]string{})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	customer, ok := body["customer"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, customer["id"])
}

func TestTurn_ValidationFailure(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := postJSON(t, ts, "/api/v1/conversation/turn", map[string]string{"conversationId": "c1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postJSON(t, ts, "/api/v1/conversation/turn", map[string]string{"conversationId": "c1", "message": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTurn_UnknownConversation(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := postJSON(t, ts, "/api/v1/conversation/turn", map[string]string{
		"conversationId": "missing",
		"message":        "hello",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTurn_RedisFailureIsInternalError(t *testing.T) {
	ts, mr := newTestServerWithRedis(t)

	resp, body := postJSON(t, ts, "/api/v1/conversation/start", map[string]string{"customerId": "CUST001"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	convID := body["conversationId"].(string)

	mr.SetError("connection refused")

	resp, body = postJSON(t, ts, "/api/v1/conversation/turn", map[string]string{
		"conversationId": convID,
		"message":        "hello",
	})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "internal error", body["error"])
}

func TestConversationFlow_EndToEnd(t *testing.T) {
	ts := newTestServer(t)

	resp, body := postJSON(t, ts, "/api/v1/conversation/start", map[string]string{"customerId": "CUST001"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	convID := body["conversationId"].(string)

	turn := func(message string) map[string]any {
		resp, body := postJSON(t, ts, "/api/v1/conversation/turn", map[string]string{
			"conversationId": convID,
			"message":        message,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		return body
	}

	body = turn("I need 5 lakh for 3 years")
	assert.Equal(t, string(models.StageVerification), body["stage"])

	body = turn("please verify me")
	assert.Equal(t, string(models.StageUnderwriting), body["stage"])

	body = turn("go ahead")
	assert.Equal(t, string(models.StageSanction), body["stage"])

	// Sanction letter becomes available once the loan is approved.
	resp, body = postJSON(t, ts, "/api/v1/sanction-letter/generate", map[string]string{"conversationId": convID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Regexp(t, regexp.MustCompile(`^SL-\d{6}-\d{5}$`), body["letterNumber"])
	assert.Contains(t, body["html"], "Rahul Sharma")
}

func TestSanctionLetter_NotSanctioned(t *testing.T) {
	ts := newTestServer(t)

	resp, body := postJSON(t, ts, "/api/v1/conversation/start", map[string]string{"customerId": "CUST001"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	convID := body["conversationId"].(string)

	resp, _ = postJSON(t, ts, "/api/v1/sanction-letter/generate", map[string]string{"conversationId": convID})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestVerifyEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, body := postJSON(t, ts, "/api/v1/crm/verify", map[string]string{"customerId": "CUST002"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["verified"])
	assert.Equal(t, "APPROVED", body["kycStatus"])
}

func TestScoreEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, body := postJSON(t, ts, "/api/v1/credit-bureau/score", map[string]string{"customerId": "CUST004"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(810), body["creditScore"])
	assert.Equal(t, "Excellent", body["creditHistory"])
	assert.Equal(t, "Very Low", body["defaultRisk"])

	resp, _ = postJSON(t, ts, "/api/v1/credit-bureau/score", map[string]string{"customerId": "CUST404"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEvaluateEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, body := postJSON(t, ts, "/api/v1/underwriting/evaluate", map[string]any{
		"customerId": "CUST001",
		"loanAmount": 500000,
		"tenure":     5,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(models.OutcomeApproved), body["outcome"])
	assert.Equal(t, true, body["approved"])
	assert.Equal(t, 8.5, body["interestRatePct"])
}

func TestEvaluateEndpoint_SchemaRejectsBadInput(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := postJSON(t, ts, "/api/v1/underwriting/evaluate", map[string]any{
		"customerId": "CUST001",
		"loanAmount": -5,
		"tenure":     5,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postJSON(t, ts, "/api/v1/underwriting/evaluate", map[string]any{
		"customerId": "CUST001",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postJSON(t, ts, "/api/v1/underwriting/evaluate", map[string]any{
		"customerId": "CUST001",
		"loanAmount": 500000,
		"tenure":     9999999,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
