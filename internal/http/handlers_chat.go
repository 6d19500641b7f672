package http

import (
	"errors"
	"net/http"

	"finsmart/internal/assistant"
	applog "finsmart/internal/log"
)

// handleChat answers the support assistant. The assistant itself handles
// fraud escalation; a missing model yields 503 and an unreachable one a
// canned reply.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req assistant.ChatRequest
	if !decodeOrFail(w, r, &req) {
		return
	}
	s.appMetrics.chatRequests.Add(1)

	if s.assistant == nil {
		s.writeError(w, r, assistant.ErrNotConfigured, "chat", applog.OpRead)
		return
	}

	resp, err := s.assistant.Chat(r.Context(), req)
	switch {
	case err == nil:
		NewJSONResponse().Body(resp).Write(w)
	case errors.Is(err, assistant.ErrEmptyMessage):
		BadRequestError("Message is required").Write(w)
	case errors.Is(err, assistant.ErrNotConfigured):
		s.writeError(w, r, err, "chat", applog.OpRead)
	default:
		applog.LogError(r.Context(), "Assistant request failed", err,
			applog.ErrorTypeNetwork, applog.ComponentAssistant, applog.OpRead, nil)
		ErrorResponse(http.StatusBadGateway, assistant.UnavailableReply).Write(w)
	}
}
