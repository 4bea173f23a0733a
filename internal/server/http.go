package server

import (
	"sync/atomic"
	"time"

	"resumescan/internal/ai"
	"resumescan/internal/analysis"
	"resumescan/internal/cache"
	"resumescan/internal/config"
	resumescanErrors "resumescan/internal/errors"
	"resumescan/internal/observability"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Dependencies are the collaborators a Server serves requests with
type Dependencies struct {
	Engine        *analysis.Engine
	Enricher      *ai.Enricher
	Cache         *cache.EnrichmentCache
	Observability *observability.Manager
	Prompts       *config.PromptStore
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// API Authentication, swapped atomically when Vault rotates keys
	apiKeys atomic.Pointer[map[string]bool]

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	engine   *analysis.Engine
	enricher *ai.Enricher
	cache    *cache.EnrichmentCache
	obs      *observability.Manager
	prompts  *config.PromptStore

	startedAt time.Time

	// Logger
	Logger *resumescanErrors.Logger
}

// NewServer creates a new Server from the application configuration
func NewServer(appCfg *config.Config, deps Dependencies, version string, logger *resumescanErrors.Logger) *Server {
	srvCfg := appCfg.Server

	var rateLimiter *RateLimiter
	if srvCfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			srvCfg.RateLimit.RequestsPerMin,
			srvCfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	engine := deps.Engine
	if engine == nil {
		engine = analysis.NewEngine(appCfg.Analysis.EngineOptions()...)
	}

	s := &Server{
		Host:           srvCfg.Host,
		Port:           srvCfg.Port,
		Version:        version,
		AppConfig:      appCfg,
		ReadTimeout:    srvCfg.ReadTimeout,
		WriteTimeout:   srvCfg.WriteTimeout,
		IdleTimeout:    srvCfg.IdleTimeout,
		MaxRequestSize: srvCfg.MaxRequestSize,
		RateLimit:      &srvCfg.RateLimit,
		RateLimiter:    rateLimiter,
		engine:         engine,
		enricher:       deps.Enricher,
		cache:          deps.Cache,
		obs:            deps.Observability,
		prompts:        deps.Prompts,
		startedAt:      time.Now(),
		Logger:         logger,
	}
	s.SetAPIKeys(srvCfg.APIKeys)
	return s
}

// SetAPIKeys replaces the accepted API keys. An empty list disables auth.
func (s *Server) SetAPIKeys(keys []string) {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool, len(keys))
	for _, key := range keys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}
	s.apiKeys.Store(&apiKeyMap)
}

// APIKeys returns the current API key set
func (s *Server) APIKeys() map[string]bool {
	if keys := s.apiKeys.Load(); keys != nil {
		return *keys
	}
	return nil
}
