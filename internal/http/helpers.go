package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"finsmart/internal/assistant"
	"finsmart/internal/auth"
	"finsmart/internal/core"
	"finsmart/internal/evaluator"
	applog "finsmart/internal/log"
	"finsmart/internal/ports"
)

type userIDKey struct{}

// userHandler is a handler that runs only for an authenticated user.
type userHandler func(w http.ResponseWriter, r *http.Request, userID string)

// requireUser resolves the session cookie and rejects anonymous requests
// with 401.
func (s *Server) requireUser(next userHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.sessionUser(r)
		if !ok {
			UnauthorizedError().Write(w)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey{}, userID)
		ctx = applog.WithLogger(ctx, applog.FromContext(ctx).With(applog.FieldUserID, userID))
		next(w, r.WithContext(ctx), userID)
	})
}

func (s *Server) sessionUser(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", false
	}
	sess, ok := s.sessions.Lookup(c.Value)
	if !ok {
		return "", false
	}
	return sess.UserID, true
}

// loadOwned fetches a row by the {id} path value and enforces ownership:
// unknown ids are 404, rows of another user are 403. It writes the error
// response itself and reports whether the handler should continue.
func loadOwned[T any](s *Server, w http.ResponseWriter, r *http.Request, userID, entity string,
	get func(context.Context, string) (T, error), owner func(T) string) (T, bool) {
	var zero T
	id := r.PathValue("id")
	row, err := get(r.Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		NotFoundError(entity + " not found").Write(w)
		return zero, false
	}
	if err != nil {
		s.writeError(w, r, err, entity, applog.OpRead)
		return zero, false
	}
	if owner(row) != userID {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Access to foreign row denied",
			applog.FieldEntity, entity, applog.FieldEntityID, id)
		ForbiddenError().Write(w)
		return zero, false
	}
	return row, true
}

// writeError maps domain and infrastructure errors onto status codes.
// Anything unrecognised is logged and reported as 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, entity, op string) {
	ctx := r.Context()
	switch {
	case errors.Is(err, errEmptyBody):
		BadRequestError(err.Error()).Write(w)
	case core.IsValidationError(err), errors.Is(err, evaluator.ErrConfiguration):
		UnprocessableEntityError(err.Error()).Write(w)
	case errors.Is(err, auth.ErrInvalidCredentials):
		ErrorResponse(http.StatusUnauthorized, err.Error()).Write(w)
	case errors.Is(err, auth.ErrUsernameTaken), errors.Is(err, ports.ErrConflict):
		ConflictError(err.Error()).Write(w)
	case errors.Is(err, ports.ErrNotFound):
		NotFoundError(entity + " not found").Write(w)
	case errors.Is(err, assistant.ErrNotConfigured):
		ServiceUnavailableError("The assistant is not available right now. Please contact support.").Write(w)
	case errors.Is(err, evaluator.ErrInvariant):
		applog.LogError(ctx, "Evaluation failed on corrupted data", err,
			applog.ErrorTypeInvariant, applog.ComponentHTTP, op,
			applog.NewFields().WithEntity(entity, ""))
		InternalServerError().Write(w)
	default:
		applog.LogError(ctx, "Request failed", err,
			applog.ErrorTypeInternal, applog.ComponentHTTP, op,
			applog.NewFields().WithEntity(entity, ""))
		InternalServerError().Write(w)
	}
}

// decodeOrFail decodes the body into v, writing 400 on malformed input.
func decodeOrFail(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decodeJSON(w, r, v); err != nil {
		BadRequestError(err.Error()).Write(w)
		return false
	}
	return true
}

// nowOrFail resolves the evaluation instant, writing 400 on a bad override.
func (s *Server) nowOrFail(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	now, err := ParseNow(r, s.clock)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return time.Time{}, false
	}
	return now, true
}
