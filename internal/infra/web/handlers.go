package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"grasshopper/internal/domain"
	"grasshopper/internal/domain/model"
	"grasshopper/internal/infra/logging"
)

type outfitRequest struct {
	Idea string `json:"idea"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type wardrobeResponse struct {
	Outfits []model.OutfitRecord `json:"outfits"`
}

type historyResponse struct {
	Lines []string         `json:"lines"`
	Turns []model.ChatTurn `json:"turns"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	TraceID string `json:"trace_id,omitempty"`
}

func (s *Server) apiGenerateOutfit(w http.ResponseWriter, r *http.Request) {
	var req outfitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Kind: "bad_request"})
		return
	}
	res, err := s.outfitUC.Generate(r.Context(), sessionFrom(r.Context()), req.Idea)
	if err != nil {
		s.writeError(w, r, err, s.tr.T("outfit_missing"), "outfit_error")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) apiChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Kind: "bad_request"})
		return
	}
	reply, err := s.chatUC.Send(r.Context(), sessionFrom(r.Context()), req.Message)
	if err != nil {
		s.writeError(w, r, err, s.tr.T("chat_missing"), "chat_error")
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func (s *Server) apiWardrobe(w http.ResponseWriter, r *http.Request) {
	snap := s.sessionUC.Snapshot(r.Context(), sessionFrom(r.Context()))
	writeJSON(w, http.StatusOK, wardrobeResponse{Outfits: snap.Wardrobe})
}

func (s *Server) apiHistory(w http.ResponseWriter, r *http.Request) {
	snap := s.sessionUC.Snapshot(r.Context(), sessionFrom(r.Context()))
	writeJSON(w, http.StatusOK, historyResponse{Lines: snap.History, Turns: snap.Turns})
}

func (s *Server) apiEndSession(w http.ResponseWriter, r *http.Request) {
	s.endSession(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := s.sessionUC.End(r.Context(), sess.ID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		logging.With(r.Context(), s.log).Warn().Err(err).Msg("end session")
	}
	s.sessions.Clear(w)
	w.Header().Del(sessionTokenHeader)
}

// writeError maps the error taxonomy to a status and a user-facing message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, missingMsg, failKey string) {
	status, body := s.classify(r, err, missingMsg, failKey)
	writeJSON(w, status, body)
}

func (s *Server) classify(r *http.Request, err error, missingMsg, failKey string) (int, errorResponse) {
	ctx := r.Context()
	tid := logging.TraceID(ctx)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, errorResponse{Error: missingMsg, Kind: "invalid_input", TraceID: tid}
	case errors.Is(err, domain.ErrExternalService):
		s.reporter.Capture(ctx, err)
		msg := err.Error()
		var ext *domain.ExternalServiceError
		if errors.As(err, &ext) && ext.Err != nil {
			msg = ext.Err.Error()
		}
		return http.StatusBadGateway, errorResponse{Error: s.tr.T(failKey, msg), Kind: "external_service", TraceID: tid}
	case errors.Is(err, context.Canceled):
		logging.With(ctx, s.log).Debug().Msg("request canceled before the action ran")
		return http.StatusServiceUnavailable, errorResponse{Error: s.tr.T("internal_error"), Kind: "canceled", TraceID: tid}
	default:
		s.reporter.Capture(ctx, err)
		logging.With(ctx, s.log).Error().Err(err).Msg("unexpected error")
		return http.StatusInternalServerError, errorResponse{Error: s.tr.T("internal_error"), Kind: "internal", TraceID: tid}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeInternal is the last-resort response used by middleware.
func writeInternal(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "internal error",
			Kind:    "internal",
			TraceID: logging.TraceID(r.Context()),
		})
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}
