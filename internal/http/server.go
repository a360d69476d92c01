package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/middleware/ratelimit"
	"gastos/internal/middleware/security"
	"gastos/internal/middleware/trace"
	"gastos/internal/services"
	"gastos/internal/session"
)

// Options configures NewServer. Expenses, Reports and SessionSecret are
// required.
type Options struct {
	Addr               string
	Expenses           *services.ExpenseService
	Reports            *services.ReportService
	SessionSecret      string
	WeekStart          core.WeekStart
	RateLimitPerMinute int
	// Ready reports whether the backing services are reachable. Nil means
	// always ready.
	Ready  func(context.Context) error
	Logger *log.Logger
	// Now is the clock used for defaults such as "this month".
	Now func() time.Time
}

type Server struct {
	http.Server
	expenses  *services.ExpenseService
	reports   *services.ReportService
	weekStart core.WeekStart
	ready     func(context.Context) error
	logger    *log.Logger
	now       func() time.Time

	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware
	detector     *security.Detector
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. Every /api/ route needs a bearer session.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		expenses:  opts.Expenses,
		reports:   opts.Reports,
		weekStart: opts.WeekStart,
		ready:     opts.Ready,
		logger:    opts.Logger.WithComponent(log.ComponentHTTP),
		now:       opts.Now,
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:  security.NewDetector(opts.Logger),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, opts.Logger)

	api := http.NewServeMux()
	api.HandleFunc("GET /api/categories", s.handleCategories)
	api.HandleFunc("GET /api/expenses", s.handleListExpenses)
	api.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	api.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	api.HandleFunc("PATCH /api/expenses/{id}", s.handleUpdateExpense)
	api.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	api.HandleFunc("GET /api/summary", s.handleSummary)
	api.HandleFunc("GET /api/calendar", s.handleCalendar)
	api.HandleFunc("GET /api/days/{date}", s.handleDay)
	api.HandleFunc("GET /api/overview", s.handleOverview)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("/api/", session.Middleware(opts.SessionSecret, opts.Logger)(api))

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, ratelimit.Mutating, opts.Logger)(h)
	h = s.tracer.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(h)
	s.Handler = h

	return s
}

// Shutdown stops the rate limiter cleanup and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		m := s.tracer.GetMetrics()
		s.logger.Info("HTTP server shutting down",
			log.FieldOperation, log.OpShutdown,
			log.FieldCount, m.TotalRequests)
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// today is the current calendar date in the server's location.
func (s *Server) today() core.Date {
	return core.DateOf(s.now())
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
