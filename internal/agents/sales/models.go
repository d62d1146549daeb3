package sales

import "instantcredit-agents/internal/models"

// Response is the sales stage outcome. LoanRequest is non-nil only when
// the stage is complete.
type Response struct {
	Message     string
	LoanRequest *models.LoanRequest
}
