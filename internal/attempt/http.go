package attempt

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/skillgauge/assessment-engine/internal/auth"
	httperrors "github.com/skillgauge/assessment-engine/pkg/http/errors"
)

// HTTPHandlers exposes the attempt operations over HTTP.
type HTTPHandlers struct {
	svc    *Service
	tokens *auth.Manager
	logger zerolog.Logger
}

// NewHTTPHandlers wires the attempt HTTP surface.
func NewHTTPHandlers(svc *Service, tokens *auth.Manager, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{svc: svc, tokens: tokens, logger: logger}
}

type createRequest struct {
	CandidateID string          `json:"candidate_id"`
	TestType    string          `json:"test_type"`
	Questions   json.RawMessage `json:"questions"`
}

type createResponse struct {
	AttemptID string         `json:"attempt_id"`
	TestType  string         `json:"test_type"`
	Token     string         `json:"token"`
	Questions []QuestionView `json:"questions"`
}

// Create handles POST /v1/attempts.
func (h *HTTPHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Malformed request body")
		return
	}

	candidateID, err := uuid.Parse(req.CandidateID)
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "candidate_id must be a UUID", "candidate_id")
		return
	}
	if req.TestType == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "test_type is required", "test_type")
		return
	}

	// A non-array questions value is rejected here; the session itself
	// never sees the malformed batch.
	var rawQuestions []map[string]any
	if err := json.Unmarshal(req.Questions, &rawQuestions); err != nil {
		h.logger.Warn().Err(err).Str("test_type", req.TestType).Msg("rejecting non-array question batch")
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidQuestionBatch, "questions must be an array of question objects")
		return
	}

	created, err := h.svc.Create(r.Context(), candidateID, req.TestType, rawQuestions)
	if err != nil {
		h.logger.Error().Err(err).Msg("attempt creation failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeAttemptCreationFailed, "Could not create attempt")
		return
	}

	token, err := h.tokens.GenerateAttemptToken(candidateID, created.AttemptID, created.TestType)
	if err != nil {
		h.logger.Error().Err(err).Msg("token generation failed")
		httperrors.RespondInternalError(w, "Could not issue attempt token")
		return
	}

	respondJSON(w, http.StatusCreated, createResponse{
		AttemptID: created.AttemptID.String(),
		TestType:  created.TestType,
		Token:     token,
		Questions: created.Questions,
	})
}

// StartQuestion handles POST /v1/attempts/{id}/questions/{qid}/start.
func (h *HTTPHandlers) StartQuestion(w http.ResponseWriter, r *http.Request) {
	attemptID, ok := h.authorizedAttemptID(w, r)
	if !ok {
		return
	}
	if err := h.svc.StartQuestion(r.Context(), attemptID, r.PathValue("qid")); err != nil {
		h.respondServiceError(w, err, "start question failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"started": true})
}

type answerRequest struct {
	QuestionID string `json:"question_id"`
	Answer     any    `json:"answer"`
}

// RecordAnswer handles POST /v1/attempts/{id}/answers.
func (h *HTTPHandlers) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	attemptID, ok := h.authorizedAttemptID(w, r)
	if !ok {
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Malformed request body")
		return
	}
	if req.QuestionID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "question_id is required", "question_id")
		return
	}

	if err := h.svc.RecordAnswer(r.Context(), attemptID, req.QuestionID, stringifyAnswer(req.Answer)); err != nil {
		h.respondServiceError(w, err, "record answer failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"recorded": true})
}

// Results handles GET /v1/attempts/{id}/results.
func (h *HTTPHandlers) Results(w http.ResponseWriter, r *http.Request) {
	attemptID, ok := h.authorizedAttemptID(w, r)
	if !ok {
		return
	}
	report, err := h.svc.Results(r.Context(), attemptID)
	if err != nil {
		h.respondServiceError(w, err, "results failed")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// Breakdown handles GET /v1/attempts/{id}/questions/{qid}/breakdown.
func (h *HTTPHandlers) Breakdown(w http.ResponseWriter, r *http.Request) {
	attemptID, ok := h.authorizedAttemptID(w, r)
	if !ok {
		return
	}
	breakdown, err := h.svc.Breakdown(r.Context(), attemptID, r.PathValue("qid"))
	if err != nil {
		h.respondServiceError(w, err, "breakdown failed")
		return
	}
	respondJSON(w, http.StatusOK, breakdown)
}

// Discard handles DELETE /v1/attempts/{id}.
func (h *HTTPHandlers) Discard(w http.ResponseWriter, r *http.Request) {
	attemptID, ok := h.authorizedAttemptID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Discard(r.Context(), attemptID); err != nil {
		h.respondServiceError(w, err, "discard failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// authorizedAttemptID parses the path id and checks it against the
// attempt token's claims.
func (h *HTTPHandlers) authorizedAttemptID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	attemptID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidAttemptID, "Attempt id must be a UUID")
		return uuid.Nil, false
	}
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Attempt token required")
		return uuid.Nil, false
	}
	if claims.AttemptID != attemptID {
		httperrors.RespondForbidden(w, httperrors.ErrCodeAttemptMismatch, "Token is not valid for this attempt")
		return uuid.Nil, false
	}
	return attemptID, true
}

func (h *HTTPHandlers) respondServiceError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, ErrAttemptNotFound) {
		httperrors.RespondNotFound(w, httperrors.ErrCodeAttemptNotFound, "Attempt not found or expired")
		return
	}
	h.logger.Error().Err(err).Msg(msg)
	httperrors.RespondInternalError(w, "Operation failed")
}

// stringifyAnswer accepts string, numeric and boolean answers, since
// numerical test screens submit numbers rather than option letters.
func stringifyAnswer(v any) string {
	switch a := v.(type) {
	case string:
		return a
	case nil:
		return ""
	default:
		return fmt.Sprint(a)
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
