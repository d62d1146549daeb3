// Package dispatcher routes each conversation turn to the stage agent
// the current stage authorizes, and owns every stage transition.
package dispatcher

import (
	"context"
	"fmt"

	"instantcredit-agents/internal/agents/sales"
	"instantcredit-agents/internal/agents/underwriting"
	"instantcredit-agents/internal/agents/verification"
	"instantcredit-agents/internal/common/errors"
	"instantcredit-agents/internal/common/logger"
	"instantcredit-agents/internal/common/metrics"
	"instantcredit-agents/internal/letter"
	"instantcredit-agents/internal/models"
)

// Response is one completed turn: the reply to show, the full new
// conversation state and the agent that produced the reply.
type Response struct {
	Message   string
	State     models.ConversationState
	AgentType models.AgentType
}

// Dispatcher holds no per-conversation state; the caller passes state in
// and stores the returned value.
type Dispatcher struct {
	sales        *sales.Handler
	verification *verification.Handler
	underwriting *underwriting.Handler
	logger       logger.Logger
}

func New(salesHandler *sales.Handler, verificationHandler *verification.Handler, underwritingHandler *underwriting.Handler, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		sales:        salesHandler,
		verification: verificationHandler,
		underwriting: underwritingHandler,
		logger:       log.WithFields(map[string]interface{}{"component": "dispatcher"}),
	}
}

// StartConversation binds a customer and produces the greeting plus the
// initial state.
func (d *Dispatcher) StartConversation(customer models.Customer) (string, models.ConversationState) {
	greeting := fmt.Sprintf(`Hello %s! 👋 Welcome to InstantCreditAI. I'm your personal loan assistant powered by advanced AI.

I'm here to help you get a personal loan quickly and easily. We have a streamlined process that typically takes just a few minutes.

To get started, could you please tell me:
1. How much loan amount are you looking for?
2. What tenure (in years) would you prefer for repayment?

Let's find the perfect loan solution for you!`, customer.Name)

	state := models.ConversationState{
		CustomerID:   customer.ID,
		CurrentAgent: models.AgentMaster,
		Stage:        models.StageGreeting,
	}
	return greeting, state
}

// HandleTurn processes one user message against the current state and
// returns the reply plus the new state. The input state is never
// mutated. Any unexpected failure, including a panic in a handler,
// resolves to an apology and a forced reset to the sales stage so the
// conversation always remains continuable.
func (d *Dispatcher) HandleTurn(ctx context.Context, userMessage string, state models.ConversationState) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("turn handler panicked", map[string]interface{}{
				"stage": state.Stage,
				"panic": fmt.Sprintf("%v", r),
			})
			resp = d.recoveryResponse(state)
		}
	}()

	metrics.ConversationTurns.WithLabelValues(string(state.Stage)).Inc()

	switch state.Stage {
	case models.StageGreeting, models.StageSales:
		return d.handleSalesStage(ctx, userMessage, state)
	case models.StageVerification:
		return d.handleVerificationStage(ctx, userMessage, state)
	case models.StageUnderwriting:
		return d.handleUnderwritingStage(ctx, userMessage, state)
	case models.StageSanction:
		return d.handleSanctionStage(state)
	case models.StageRejected:
		return d.handleRejectionStage(state)
	default:
		return &Response{
			Message:   "I'm not sure how to proceed. Let me start over. How much loan amount are you looking for?",
			State:     d.transition(state, models.StageSales, models.AgentMaster),
			AgentType: models.AgentMaster,
		}
	}
}

func (d *Dispatcher) handleSalesStage(ctx context.Context, userMessage string, state models.ConversationState) *Response {
	salesResp, err := d.sales.Process(ctx, userMessage, state)
	if err != nil {
		d.logger.Error("sales agent failed", map[string]interface{}{"error": err.Error()})
		return d.recoveryResponse(state)
	}

	if salesResp.LoanRequest != nil {
		next := d.transition(state, models.StageVerification, models.AgentVerification)
		next.LoanRequest = salesResp.LoanRequest
		return &Response{
			Message:   salesResp.Message,
			State:     next,
			AgentType: models.AgentSales,
		}
	}

	return &Response{
		Message:   salesResp.Message,
		State:     d.transition(state, models.StageSales, models.AgentSales),
		AgentType: models.AgentSales,
	}
}

func (d *Dispatcher) handleVerificationStage(ctx context.Context, userMessage string, state models.ConversationState) *Response {
	if state.CustomerID == "" {
		return &Response{
			Message:   "I need to verify your identity first. Let me start the verification process.",
			State:     d.transition(state, models.StageVerification, models.AgentVerification),
			AgentType: models.AgentMaster,
		}
	}

	verResp, err := d.verification.Process(ctx, userMessage, state)
	if err != nil {
		d.logger.Error("verification agent failed", map[string]interface{}{"error": err.Error()})
		return d.recoveryResponse(state)
	}

	switch {
	case verResp.Verified:
		next := d.transition(state, models.StageUnderwriting, models.AgentUnderwriting)
		next.VerificationResult = verResp.Result
		return &Response{
			Message:   verResp.Message,
			State:     next,
			AgentType: models.AgentVerification,
		}
	case verResp.Retry:
		return &Response{
			Message:   verResp.Message,
			State:     d.transition(state, models.StageVerification, models.AgentVerification),
			AgentType: models.AgentVerification,
		}
	default:
		// Hard verification failure: fall back to the sales funnel.
		return &Response{
			Message:   verResp.Message + "\n\nLet me connect you back to our sales team to explore other options.",
			State:     d.transition(state, models.StageSales, models.AgentSales),
			AgentType: models.AgentMaster,
		}
	}
}

func (d *Dispatcher) handleUnderwritingStage(ctx context.Context, userMessage string, state models.ConversationState) *Response {
	uwResp, err := d.underwriting.Process(ctx, userMessage, state)
	if err != nil {
		if errors.IsStagePrecondition(err) {
			return &Response{
				Message:   "I need your loan details to proceed with underwriting. Let me collect that information.",
				State:     d.transition(state, models.StageSales, models.AgentSales),
				AgentType: models.AgentMaster,
			}
		}
		d.logger.Error("underwriting agent failed", map[string]interface{}{"error": err.Error()})
		return d.recoveryResponse(state)
	}

	switch {
	case uwResp.Approved:
		next := d.transition(state, models.StageSanction, models.AgentMaster)
		next.UnderwritingResult = uwResp.Result
		return &Response{
			Message:   uwResp.Message,
			State:     next,
			AgentType: models.AgentUnderwriting,
		}
	case uwResp.NeedsMoreInfo:
		return &Response{
			Message:   uwResp.Message,
			State:     d.transition(state, models.StageUnderwriting, models.AgentUnderwriting),
			AgentType: models.AgentUnderwriting,
		}
	default:
		next := d.transition(state, models.StageRejected, models.AgentMaster)
		next.UnderwritingResult = uwResp.Result
		return &Response{
			Message:   uwResp.Message,
			State:     next,
			AgentType: models.AgentUnderwriting,
		}
	}
}

func (d *Dispatcher) handleSanctionStage(state models.ConversationState) *Response {
	var amount, tenure string
	if state.LoanRequest != nil {
		amount = letter.FormatINR(state.LoanRequest.LoanAmount)
		tenure = fmt.Sprintf("%d", state.LoanRequest.Tenure)
	}

	message := fmt.Sprintf(`Congratulations! 🎉 Your loan has been approved!

**Loan Details:**
- Loan Amount: ₹%s
- Tenure: %s years
- Status: APPROVED

Your sanction letter has been generated and will be sent to your registered email shortly. You can download it from your account dashboard.

**Next Steps:**
1. Review the sanction letter
2. Complete the final documentation
3. Funds will be disbursed within 24 hours

Is there anything else you'd like to know about your loan?`, amount, tenure)

	return &Response{
		Message:   message,
		State:     d.transition(state, models.StageSanction, models.AgentMaster),
		AgentType: models.AgentMaster,
	}
}

func (d *Dispatcher) handleRejectionStage(state models.ConversationState) *Response {
	reason := "Loan criteria not met"
	if state.UnderwritingResult != nil && state.UnderwritingResult.Reason != "" {
		reason = state.UnderwritingResult.Reason
	}

	message := fmt.Sprintf(`I understand this might be disappointing. However, based on our underwriting criteria, we're unable to approve your loan at this time.

**Reasons for rejection:**
%s

**What you can do:**
1. Improve your credit score by paying existing loans on time
2. Reduce the requested loan amount
3. Increase your tenure to reduce monthly EMI
4. Reapply after 6 months

Would you like to explore any of these options or speak with our support team?`, reason)

	return &Response{
		Message:   message,
		State:     d.transition(state, models.StageRejected, models.AgentMaster),
		AgentType: models.AgentMaster,
	}
}

// transition copies the state with the new stage and the agent derived
// from it, recording the movement when the stage actually changes.
func (d *Dispatcher) transition(state models.ConversationState, stage models.Stage, agent models.AgentType) models.ConversationState {
	if state.Stage != stage {
		metrics.StageTransitions.WithLabelValues(string(state.Stage), string(stage)).Inc()
		d.logger.Info("stage transition", map[string]interface{}{
			"customerId": state.CustomerID,
			"from":       state.Stage,
			"to":         stage,
		})
	}
	next := state
	next.Stage = stage
	next.CurrentAgent = agent
	return next
}

// recoveryResponse is the outer guard's reply: apologize and fail back
// to the beginning of the funnel rather than surfacing a raw error.
func (d *Dispatcher) recoveryResponse(state models.ConversationState) *Response {
	return &Response{
		Message:   "I encountered an issue processing your request. Let me help you again. Could you please repeat your loan requirements?",
		State:     d.transition(state, models.StageSales, models.AgentMaster),
		AgentType: models.AgentMaster,
	}
}
