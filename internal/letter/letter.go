// Package letter renders sanction letters for approved loans.
package letter

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"math/rand"
	"strings"
	"time"

	"instantcredit-agents/internal/common/errors"
	"instantcredit-agents/internal/models"
)

// Data is everything one sanction letter needs.
type Data struct {
	Customer           models.Customer
	LoanRequest        models.LoanRequest
	UnderwritingResult models.UnderwritingResult
	GeneratedDate      time.Time
	LetterNumber       string
}

// Number builds a letter number in the SL-YYYYMM-NNNNN format with a
// random 5-digit suffix.
func Number(now time.Time) string {
	return fmt.Sprintf("SL-%04d%02d-%05d", now.Year(), int(now.Month()), rand.Intn(10000))
}

// RenderHTML produces the formatted sanction letter document. The rate
// and EMI come from the structured underwriting fields.
func RenderHTML(data Data) (string, error) {
	if !data.UnderwritingResult.Approved {
		return "", errors.NewLetterNotAvailableError("loan was not approved")
	}

	view := letterView{
		LetterNumber:   data.LetterNumber,
		Date:           data.GeneratedDate.Format("02 January 2006"),
		CustomerName:   data.Customer.Name,
		CustomerCity:   data.Customer.City,
		SanctionAmount: FormatINR(data.UnderwritingResult.SanctionAmount),
		Tenure:         data.LoanRequest.Tenure,
		InterestRate:   strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", data.UnderwritingResult.InterestRatePct), "0"), "."),
		MonthlyEMI:     FormatINR(math.Round(data.UnderwritingResult.MonthlyEMI)),
		Conditions:     data.UnderwritingResult.Conditions,
	}

	var buf bytes.Buffer
	if err := letterTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render sanction letter: %w", err)
	}
	return buf.String(), nil
}

type letterView struct {
	LetterNumber   string
	Date           string
	CustomerName   string
	CustomerCity   string
	SanctionAmount string
	Tenure         int
	InterestRate   string
	MonthlyEMI     string
	Conditions     []string
}

// FormatINR renders an amount with Indian digit grouping (12,34,567).
func FormatINR(amount float64) string {
	whole := fmt.Sprintf("%.0f", math.Abs(amount))
	if len(whole) > 3 {
		head := whole[:len(whole)-3]
		tail := whole[len(whole)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		whole = strings.Join(groups, ",") + "," + tail
	}
	if amount < 0 {
		return "-" + whole
	}
	return whole
}

var letterTemplate = template.Must(template.New("sanction-letter").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <style>
    body { font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f5f5f5; }
    .container { max-width: 800px; margin: 0 auto; background-color: white; padding: 40px; border: 2px solid #1e40af; }
    .header { text-align: center; border-bottom: 3px solid #1e40af; padding-bottom: 20px; margin-bottom: 30px; }
    .header h1 { margin: 0; color: #1e40af; font-size: 28px; }
    .letter-number, .date { text-align: right; font-size: 12px; color: #666; margin-bottom: 20px; }
    .recipient { margin-bottom: 30px; font-size: 14px; }
    .content { margin-bottom: 30px; font-size: 14px; line-height: 1.6; }
    .loan-details { background-color: #f0f4ff; border-left: 4px solid #1e40af; padding: 15px; margin: 20px 0; font-size: 14px; }
    .loan-details table { width: 100%; border-collapse: collapse; }
    .loan-details td { padding: 8px; border-bottom: 1px solid #ddd; }
    .loan-details td:first-child { font-weight: bold; width: 50%; color: #1e40af; }
    .conditions { background-color: #fff9e6; border-left: 4px solid #f59e0b; padding: 15px; margin: 20px 0; font-size: 13px; }
    .conditions h3 { margin-top: 0; color: #d97706; }
    .footer { border-top: 1px solid #ddd; padding-top: 20px; font-size: 12px; color: #666; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>InstantCreditAI</h1>
      <p>Personal Loan Sanction Letter</p>
    </div>
    <div class="letter-number">Letter No: {{.LetterNumber}}</div>
    <div class="date">Date: {{.Date}}</div>
    <div class="recipient">
      <p>{{.CustomerName}}</p>
      <p>{{.CustomerCity}}</p>
    </div>
    <div class="content">
      <p>Dear {{.CustomerName}},</p>
      <p>We are pleased to inform you that your personal loan application has been approved. The sanctioned terms are set out below.</p>
    </div>
    <div class="loan-details">
      <table>
        <tr><td>Sanctioned Amount</td><td>₹{{.SanctionAmount}}</td></tr>
        <tr><td>Interest Rate</td><td>{{.InterestRate}}% per annum</td></tr>
        <tr><td>Tenure</td><td>{{.Tenure}} years</td></tr>
        <tr><td>Monthly EMI</td><td>₹{{.MonthlyEMI}}</td></tr>
      </table>
    </div>
    <div class="conditions">
      <h3>Terms and Conditions</h3>
      <ul>
        {{range .Conditions}}<li>{{.}}</li>
        {{end}}
      </ul>
    </div>
    <div class="footer">
      <p>This sanction letter is valid for 30 days from the date of issue. Disbursal is subject to execution of the loan agreement.</p>
    </div>
  </div>
</body>
</html>
`))
