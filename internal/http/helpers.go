package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"jotledger/internal/core"
	applog "jotledger/internal/log"
)

type contextKey string

const userContextKey contextKey = "user"

// requireAuth resolves the session cookie to a user and injects it into the
// request context. Unauthenticated requests get 401.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Authentication required.")
			return
		}

		user, err := s.authService.Authenticate(r.Context(), cookie.Value)
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

func userFrom(r *http.Request) core.User {
	user, _ := r.Context().Value(userContextKey).(core.User)
	return user
}

// requireMethod enforces the HTTP method, answering 405 otherwise.
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return false
	}
	return true
}

// pathID extracts the numeric item id trailing the given route prefix.
func pathID(r *http.Request, prefix string) (int64, bool) {
	raw := strings.TrimPrefix(r.URL.Path, prefix)
	if raw == "" || strings.Contains(raw, "/") {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return core.NewValidationError("invalid request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeError maps the error taxonomy to stable statuses and messages so the
// calling layer can present appropriate feedback.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		writeMessage(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, core.ErrInvalidOrder):
		writeMessage(w, http.StatusBadRequest, "Invalid order payload.")
	case errors.Is(err, core.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, core.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "Unauthorized.")
	case errors.Is(err, core.ErrNothingToUndo):
		writeMessage(w, http.StatusBadRequest, "Nothing to undo.")
	case errors.Is(err, core.ErrUndoExpired):
		writeMessage(w, http.StatusBadRequest, "Undo window expired.")
	case errors.Is(err, core.ErrUsernameTaken):
		writeMessage(w, http.StatusConflict, "Username already exists.")
	case errors.Is(err, core.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials.")
	case errors.Is(err, core.ErrSessionExpired):
		writeMessage(w, http.StatusUnauthorized, "Session expired.")
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldError, err,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path)
		writeMessage(w, http.StatusInternalServerError, "Database error.")
	}
}
