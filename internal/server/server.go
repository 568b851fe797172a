package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rizzrioo06/careermate/internal/career"
	"github.com/rizzrioo06/careermate/internal/config"
	"github.com/rizzrioo06/careermate/internal/db"
	"github.com/rizzrioo06/careermate/internal/llm"
	"github.com/rizzrioo06/careermate/internal/llmjson"
	"github.com/rizzrioo06/careermate/internal/server/middleware"
	"github.com/rizzrioo06/careermate/internal/server/ratelimit"
	"github.com/rizzrioo06/careermate/internal/session"
)

// Store is everything the server reads and writes. *db.DB implements it.
type Store interface {
	UserStore
	RecordStore
	career.Store
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	corsOrigin  string
	records     RecordStore
	career      *career.Service
	authHandler *AuthHandler
	rateLimiter *ratelimit.Limiter
	sessions    session.Store
	llm         llm.Client
	ping        func(context.Context) error
	closeStore  func()
}

// deps are the collaborators New wires from the environment. Tests build
// them directly.
type deps struct {
	store      Store
	llm        llm.Client
	extractor  *llmjson.Extractor
	sessions   session.Store
	jwt        *config.JWTConfig
	password   *config.PasswordConfig
	limiter    *ratelimit.Limiter
	ping       func(context.Context) error
	closeStore func()
}

// New connects to the database, the LLM provider and the session store
// described by cfg and the environment, and returns a ready server.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	llmConfig, err := llm.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load LLM config: %w", err)
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	client, err := llm.NewClient(ctx, llmConfig)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	sessions, err := session.Open(ctx, cfg.RedisURL)
	if err != nil {
		_ = client.Close()
		database.Close()
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	var extractOpts []llmjson.Option
	if llmConfig.RepairJSON {
		extractOpts = append(extractOpts, llmjson.WithRepair())
	}

	log.Printf("[server] llm provider %s (advanced model %s), json repair %v",
		llmConfig.Provider, client.GetModel(llm.TierAdvanced), llmConfig.RepairJSON)

	return newServer(cfg, deps{
		store:      database,
		llm:        client,
		extractor:  llmjson.NewExtractor(extractOpts...),
		sessions:   sessions,
		jwt:        jwtConfig,
		password:   passwordConfig,
		limiter:    ratelimit.NewLimiter(ratelimit.LoadConfig()),
		ping:       database.Ping,
		closeStore: database.Close,
	}), nil
}

func newServer(cfg *config.Config, d deps) *Server {
	jwtService := NewJWTService(d.jwt)

	s := &Server{
		corsOrigin:  cfg.CORSOrigin,
		records:     d.store,
		career:      career.NewService(d.llm, d.store, d.extractor),
		authHandler: NewAuthHandler(NewUserService(d.store, d.password), jwtService, d.sessions),
		rateLimiter: d.limiter,
		sessions:    d.sessions,
		llm:         d.llm,
		ping:        d.ping,
		closeStore:  d.closeStore,
	}
	if s.corsOrigin == "" {
		s.corsOrigin = "*"
	}

	protected := middleware.AuthMiddleware(jwtService.AsTokenValidator(d.sessions))
	auth := func(h http.HandlerFunc) http.Handler { return protected(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Accounts
	mux.HandleFunc("POST /api/auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", s.authHandler.Login)
	mux.Handle("GET /api/auth/me", auth(s.authHandler.Me))
	mux.Handle("POST /api/auth/logout", auth(s.authHandler.Logout))
	mux.Handle("PUT /api/auth/password", auth(s.authHandler.UpdatePassword))

	// Generation
	mux.Handle("POST /api/career-guidance", auth(s.handleCareerGuidance))
	mux.Handle("POST /api/mock-interview", auth(s.handleMockInterview))
	mux.Handle("POST /api/mock-interview/{id}/answers", auth(s.handleInterviewAnswer))
	mux.Handle("POST /api/job-suggestions", auth(s.handleJobSuggestions))
	mux.Handle("POST /api/career-discovery", auth(s.handleCareerDiscovery))
	mux.Handle("POST /api/career-stories", auth(s.handleCareerStories))
	mux.Handle("POST /api/career-stories/{id}/regenerate", auth(s.handleRegenerateStory))

	// Dashboard
	mux.Handle("GET /api/dashboard", auth(s.handleDashboard))
	mux.Handle("GET /api/records", auth(s.handleListRecords))
	mux.Handle("GET /api/records/{id}", auth(s.handleGetRecord))
	mux.Handle("DELETE /api/records/{id}", auth(s.handleDeleteRecord))

	s.handler = s.withLogging(s.withCORS(s.withRateLimit(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second, // story sets make several LLM calls
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully and
// releases the server's connections.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.Close()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("[server] shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.Close()
	log.Println("[server] stopped")
	return nil
}

// Close releases the rate limiter, session store, LLM client and database.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.sessions != nil {
		if err := s.sessions.Close(); err != nil {
			log.Printf("[server] closing session store: %v", err)
		}
	}
	if s.llm != nil {
		if err := s.llm.Close(); err != nil {
			log.Printf("[server] closing llm client: %v", err)
		}
	}
	if s.closeStore != nil {
		s.closeStore()
	}
}

// withCORS adds CORS headers and answers preflight requests.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if s.corsOrigin != "*" {
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects requests over their endpoint's budget with a 429.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.rateLimiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[%s] %s %s -> %d in %v", r.Method, r.URL.Path, r.RemoteAddr, rec.status, time.Since(start))
	})
}

// handleHealth returns server health status. The database is pinged when
// one is configured.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			log.Printf("[server] health check: database ping failed: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// clientID identifies the caller for rate limiting by remote IP.
// X-Forwarded-For is not trusted.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// retryAfterSeconds rounds up so clients never retry early.
func retryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	return max(secs, 1)
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	retryAfter := retryAfterSeconds(info.RetryAfter)
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

	log.Printf("[rate-limit] %s %s from %s: limit=%d retry_after=%ds",
		r.Method, r.URL.Path, clientID(r), info.Limit, retryAfter)

	writeJSON(w, http.StatusTooManyRequests, map[string]any{
		"error":       "rate_limit_exceeded",
		"message":     "Rate limit exceeded. Please try again later.",
		"limit":       info.Limit,
		"retry_after": retryAfter,
		"reset_at":    info.ResetTime.UTC().Format(time.RFC3339),
	})
}
