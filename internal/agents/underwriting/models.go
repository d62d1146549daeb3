package underwriting

import "instantcredit-agents/internal/models"

// Response is the underwriting stage outcome. Approved and NeedsMoreInfo
// are mutually exclusive; when both are false the loan is rejected.
type Response struct {
	Message       string
	Approved      bool
	NeedsMoreInfo bool
	Result        *models.UnderwritingResult
}
