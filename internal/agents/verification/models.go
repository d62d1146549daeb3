package verification

import "instantcredit-agents/internal/models"

// Response is the verification stage outcome. Retry keeps the
// conversation in the verification stage; Verified advances it.
type Response struct {
	Message  string
	Verified bool
	Retry    bool
	Result   *models.VerificationResult
}
