package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	commonerrors "instantcredit-agents/internal/common/errors"
	"instantcredit-agents/internal/letter"
	"instantcredit-agents/internal/models"
	"instantcredit-agents/internal/session"
	"instantcredit-agents/internal/underwriting"
)

func (s *Server) handleStartConversation(w http.ResponseWriter, r *http.Request) {
	var req startConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	customer, err := s.resolveCustomer(r.Context(), req.CustomerID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	greeting, state := s.dispatcher.StartConversation(*customer)

	conv, err := s.sessions.Create(r.Context(), state)
	if err != nil {
		respondDomainError(w, commonerrors.NewInternalError(err))
		return
	}

	msg := models.ChatMessage{
		ID:        uuid.New().String(),
		Role:      "assistant",
		Content:   greeting,
		Timestamp: time.Now().UTC(),
		AgentType: models.AgentMaster,
	}
	if err := s.sessions.Append(r.Context(), conv, msg); err != nil {
		respondDomainError(w, commonerrors.NewInternalError(err))
		return
	}
	s.transcript.IndexMessage(r.Context(), conv.ID, conv.State, msg)

	respondJSON(w, http.StatusCreated, startConversationResponse{
		ConversationID: conv.ID,
		Customer:       *customer,
		Message:        greeting,
		Stage:          state.Stage,
	})
}

// resolveCustomer looks up the requested customer, or hands out a demo
// record when no ID was given and the directory can sample one.
func (s *Server) resolveCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	if customerID != "" {
		return s.directory.CustomerByID(ctx, customerID)
	}
	if sampler, ok := s.directory.(interface{ RandomCustomer() models.Customer }); ok {
		customer := sampler.RandomCustomer()
		return &customer, nil
	}
	return nil, commonerrors.NewValidationError("customerId is required")
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read request body", err)
		return
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := validateAgainst(turnRequestSchema, raw); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request", err)
		return
	}

	var req turnRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	conv, err := s.sessions.Get(r.Context(), req.ConversationID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			respondError(w, http.StatusNotFound, "conversation not found", nil)
			return
		}
		respondDomainError(w, commonerrors.NewInternalError(err))
		return
	}

	start := time.Now()
	prevStage := conv.State.Stage

	resp := s.dispatcher.HandleTurn(r.Context(), req.Message, conv.State)
	conv.State = resp.State

	userMsg := models.ChatMessage{
		ID:        uuid.New().String(),
		Role:      "user",
		Content:   req.Message,
		Timestamp: start.UTC(),
	}
	assistantMsg := models.ChatMessage{
		ID:        uuid.New().String(),
		Role:      "assistant",
		Content:   resp.Message,
		Timestamp: time.Now().UTC(),
		AgentType: resp.AgentType,
	}
	conv.Messages = append(conv.Messages, userMsg, assistantMsg)

	if err := s.sessions.Save(r.Context(), conv); err != nil {
		respondDomainError(w, commonerrors.NewInternalError(err))
		return
	}

	s.transcript.IndexMessage(r.Context(), conv.ID, conv.State, userMsg)
	s.transcript.IndexMessage(r.Context(), conv.ID, conv.State, assistantMsg)

	if s.obs != nil {
		s.obs.RecordTurnProcessed(r.Context(), string(conv.State.Stage))
		s.obs.RecordTurnDuration(r.Context(), string(conv.State.Stage), float64(time.Since(start).Milliseconds()))
	}

	if prevStage != models.StageSanction && conv.State.Stage == models.StageSanction {
		s.notifySanction(r.Context(), conv)
	}

	respondJSON(w, http.StatusOK, turnResponse{
		ConversationID: conv.ID,
		Message:        resp.Message,
		Stage:          conv.State.Stage,
		AgentType:      resp.AgentType,
		State:          conv.State,
	})
}

// notifySanction emails the sanction letter on the approval transition.
// Delivery problems are logged, never surfaced to the chat.
func (s *Server) notifySanction(ctx context.Context, conv *session.Conversation) {
	if s.notifier == nil {
		return
	}
	if conv.State.UnderwritingResult == nil || conv.State.LoanRequest == nil {
		return
	}

	customer, err := s.directory.CustomerByID(ctx, conv.State.CustomerID)
	if err != nil {
		s.logger.Warn("sanction notification skipped, customer lookup failed", map[string]interface{}{
			"conversationId": conv.ID,
			"error":          err.Error(),
		})
		return
	}

	data := letter.Data{
		Customer:           *customer,
		LoanRequest:        *conv.State.LoanRequest,
		UnderwritingResult: *conv.State.UnderwritingResult,
		GeneratedDate:      time.Now().UTC(),
		LetterNumber:       letter.Number(time.Now().UTC()),
	}
	html, err := letter.RenderHTML(data)
	if err != nil {
		s.logger.Warn("sanction letter rendering failed", map[string]interface{}{
			"conversationId": conv.ID,
			"error":          err.Error(),
		})
		return
	}

	if err := s.notifier.SendSanctionLetter(ctx, *customer, data, html); err != nil {
		s.logger.Warn("sanction notification failed", map[string]interface{}{
			"conversationId": conv.ID,
			"error":          err.Error(),
		})
	}
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.CustomerID == "" {
		respondError(w, http.StatusBadRequest, "customerId is required", nil)
		return
	}

	customer, err := s.directory.CustomerByID(r.Context(), req.CustomerID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	result, err := s.verifier.Verify(r.Context(), *customer)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	profile, err := s.bureau.Score(r.Context(), req.CustomerID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read request body", err)
		return
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := validateAgainst(evaluateRequestSchema, raw); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request", err)
		return
	}

	var req evaluateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	customer, err := s.directory.CustomerByID(r.Context(), req.CustomerID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	result, err := s.engine.Evaluate(*customer, underwriting.Request{
		CustomerID: req.CustomerID,
		LoanAmount: req.LoanAmount,
		Tenure:     req.Tenure,
		Salary:     req.Salary,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGenerateLetter(w http.ResponseWriter, r *http.Request) {
	var req letterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.ConversationID == "" {
		respondError(w, http.StatusBadRequest, "conversationId is required", nil)
		return
	}

	conv, err := s.sessions.Get(r.Context(), req.ConversationID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			respondError(w, http.StatusNotFound, "conversation not found", nil)
			return
		}
		respondDomainError(w, commonerrors.NewInternalError(err))
		return
	}

	if conv.State.UnderwritingResult == nil || conv.State.LoanRequest == nil {
		respondError(w, http.StatusConflict, "loan has not been sanctioned", nil)
		return
	}

	customer, err := s.directory.CustomerByID(r.Context(), conv.State.CustomerID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	data := letter.Data{
		Customer:           *customer,
		LoanRequest:        *conv.State.LoanRequest,
		UnderwritingResult: *conv.State.UnderwritingResult,
		GeneratedDate:      time.Now().UTC(),
		LetterNumber:       letter.Number(time.Now().UTC()),
	}
	html, err := letter.RenderHTML(data)
	if err != nil {
		respondDomainError(w, commonerrors.NewInternalError(err))
		return
	}

	respondJSON(w, http.StatusOK, letterResponse{
		LetterNumber: data.LetterNumber,
		HTML:         html,
	})
}
