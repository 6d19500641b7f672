package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"finsmart/internal/assistant"
	"finsmart/internal/auth"
	"finsmart/internal/cache"
	applog "finsmart/internal/log"
	"finsmart/internal/middleware/ratelimit"
	"finsmart/internal/middleware/security"
	"finsmart/internal/middleware/trace"
	"finsmart/internal/ports"
	"finsmart/internal/services"
)

// SessionCookie names the cookie carrying the session token.
const SessionCookie = "finsmart_session"

// Deps are the collaborators the server routes requests to. Assistant and
// Caches may be nil; Clock defaults to time.Now.
type Deps struct {
	Store         ports.Store
	Auth          *auth.Service
	Sessions      *auth.SessionManager
	Dashboard     *services.DashboardService
	Transactions  *services.TransactionService
	Assistant     *assistant.Assistant
	Caches        *cache.Manager
	Logger        *applog.Logger
	Clock         func() time.Time
	SecureCookies bool
	RateLimit     ratelimit.Config
}

type Server struct {
	http.Server

	store         ports.Store
	auth          *auth.Service
	sessions      *auth.SessionManager
	dashboard     *services.DashboardService
	transactions  *services.TransactionService
	assistant     *assistant.Assistant
	caches        *cache.Manager
	logger        *applog.Logger
	clock         func() time.Time
	secureCookies bool

	securityDetector *security.Detector
	rateLimiter      *ratelimit.Limiter
	traceMiddleware  *trace.Middleware

	appMetrics *appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	uptime              time.Time
	transactionsCreated atomic.Int64
	chatRequests        atomic.Int64
	logins              atomic.Int64
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger.WithComponent(applog.ComponentHTTP)
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	rlConfig := deps.RateLimit
	if rlConfig.RequestsPerMinute == 0 {
		rlConfig = ratelimit.DefaultConfig()
	}

	s := &Server{
		store:         deps.Store,
		auth:          deps.Auth,
		sessions:      deps.Sessions,
		dashboard:     deps.Dashboard,
		transactions:  deps.Transactions,
		assistant:     deps.Assistant,
		caches:        deps.Caches,
		logger:        logger,
		clock:         clock,
		secureCookies: deps.SecureCookies,

		securityDetector: security.NewDetector(),
		rateLimiter:      ratelimit.NewLimiter(rlConfig),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(deps.Logger, s.securityDetector.ExtractClientIP)

	mux := http.NewServeMux()
	s.routes(mux)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, rlConfig.MutatingOnly, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
	})

	var handler http.Handler = mux
	handler = limit(handler)
	handler = headers.Middleware(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.Handle("GET /api/user", s.requireUser(s.handleCurrentUser))

	mux.HandleFunc("GET /api/categories", s.handleCategories)

	mux.Handle("GET /api/transactions", s.requireUser(s.handleListTransactions))
	mux.Handle("POST /api/transactions", s.requireUser(s.handleCreateTransaction))
	mux.Handle("PUT /api/transactions/{id}", s.requireUser(s.handleUpdateTransaction))
	mux.Handle("DELETE /api/transactions/{id}", s.requireUser(s.handleDeleteTransaction))

	mux.Handle("GET /api/budgets", s.requireUser(s.handleListBudgets))
	mux.Handle("POST /api/budgets", s.requireUser(s.handleCreateBudget))
	mux.Handle("PUT /api/budgets/{id}", s.requireUser(s.handleUpdateBudget))
	mux.Handle("DELETE /api/budgets/{id}", s.requireUser(s.handleDeleteBudget))
	mux.Handle("GET /api/budgets/status", s.requireUser(s.handleBudgetStatus))

	mux.Handle("GET /api/bills", s.requireUser(s.handleListBills))
	mux.Handle("POST /api/bills", s.requireUser(s.handleCreateBill))
	mux.Handle("PUT /api/bills/{id}", s.requireUser(s.handleUpdateBill))
	mux.Handle("DELETE /api/bills/{id}", s.requireUser(s.handleDeleteBill))
	mux.Handle("GET /api/bills/status", s.requireUser(s.handleBillStatus))

	mux.Handle("GET /api/subscriptions", s.requireUser(s.handleListSubscriptions))
	mux.Handle("POST /api/subscriptions", s.requireUser(s.handleCreateSubscription))
	mux.Handle("PUT /api/subscriptions/{id}", s.requireUser(s.handleUpdateSubscription))
	mux.Handle("DELETE /api/subscriptions/{id}", s.requireUser(s.handleCancelSubscription))
	mux.Handle("GET /api/subscriptions/status", s.requireUser(s.handleSubscriptionStatus))

	mux.Handle("GET /api/goals", s.requireUser(s.handleListGoals))
	mux.Handle("POST /api/goals", s.requireUser(s.handleCreateGoal))
	mux.Handle("PUT /api/goals/{id}", s.requireUser(s.handleUpdateGoal))
	mux.Handle("DELETE /api/goals/{id}", s.requireUser(s.handleDeleteGoal))
	mux.Handle("GET /api/goals/progress", s.requireUser(s.handleGoalProgress))

	mux.Handle("GET /api/dashboard", s.requireUser(s.handleDashboard))
	mux.Handle("GET /api/dashboard/summary", s.requireUser(s.handleDashboardSummary))

	mux.HandleFunc("POST /api/chat", s.handleChat)
}

// Shutdown stops background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		if s.caches != nil {
			s.caches.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
