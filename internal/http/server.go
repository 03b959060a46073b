package http

import (
	"context"
	"net/http"
	"sync"

	"jotledger/internal/auth"
	applog "jotledger/internal/log"
	"jotledger/internal/middleware/trace"
	"jotledger/internal/services"
)

const sessionCookieName = "jotledger_session"

// Server wires the auth, notes, and ledger services behind a JSON API.
type Server struct {
	http.Server
	authService   *auth.Service
	notesService  *services.NotesService
	ledgerService *services.LedgerService
	rateLimiter   *rateLimiter
	secureCookie  bool
	shutdownOnce  sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, authSvc *auth.Service, notes *services.NotesService, ledger *services.LedgerService, secureCookie bool) *Server {
	mux := http.NewServeMux()

	s := &Server{
		authService:   authSvc,
		notesService:  notes,
		ledgerService: ledger,
		rateLimiter:   newRateLimiter(),
		secureCookie:  secureCookie,
	}

	mux.HandleFunc("/healthz", handleHealth)

	mux.HandleFunc("/register", s.handleRegister)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)

	mux.HandleFunc("/api/notes", s.requireAuth(s.handleNotes))
	mux.HandleFunc("/api/notes/", s.requireAuth(s.handleNoteByID))
	mux.HandleFunc("/api/notes/reorder", s.requireAuth(s.handleReorderNotes))
	mux.HandleFunc("/api/notes/undo", s.requireAuth(s.handleUndoNote))

	mux.HandleFunc("/api/transactions", s.requireAuth(s.handleTransactions))
	mux.HandleFunc("/api/transactions/", s.requireAuth(s.handleTransactionByID))
	mux.HandleFunc("/api/transactions/reorder", s.requireAuth(s.handleReorderTransactions))
	mux.HandleFunc("/api/transactions/undo", s.requireAuth(s.handleUndoTransaction))

	mux.HandleFunc("/api/finance/totals", s.requireAuth(s.handleFinanceTotals))

	traceMW := trace.NewMiddleware(extractClientIP)
	logMW := applog.Middleware(applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP))

	s.Server = http.Server{
		Addr:    addr,
		Handler: logMW(traceMW.Middleware(s.withSecurityHeaders(mux))),
	}

	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurityHeaders adds security headers and rate limiting on mutations.
func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isMutation(r.Method) && !s.rateLimiter.allow(extractClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeMessage(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

		next.ServeHTTP(w, r)
	})
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
