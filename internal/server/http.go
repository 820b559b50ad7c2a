package server

import (
	"context"
	"sync"
	"time"

	"wazivo/internal/ai"
	"wazivo/internal/config"
	"wazivo/internal/errors"
	"wazivo/internal/observability"
	"wazivo/internal/pipeline"
	"wazivo/internal/types"

	"github.com/go-playground/validator/v10"
)

// multipartSlack covers multipart framing and form fields around the file
const multipartSlack = 1 << 20

// AnalyzeRequest is the JSON alternative to a multipart upload
type AnalyzeRequest struct {
	Type     string `json:"type" validate:"required,eq=url"`
	URL      string `json:"url" validate:"required"`
	SkipJobs bool   `json:"skipJobs"`
}

// Runner executes the CV pipeline
type Runner interface {
	Run(ctx context.Context, source types.CVSource, opts pipeline.Options) (*types.AnalyzeResponse, error)
}

// ModelReporter exposes the state of the analysis model for health checks
type ModelReporter interface {
	GetModelInfo(ctx context.Context) *ai.ModelInfo
	Stats() map[string]any
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// API Authentication
	APIKeys *APIKeySet

	// Timeout configurations
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter Limiter

	// Logger
	Logger *errors.Logger

	runner     Runner
	model      ModelReporter
	components *pipeline.Components
	metrics    *observability.Metrics
	validate   *validator.Validate
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// ServerConfigFrom derives the server settings from application config
func ServerConfigFrom(cfg *config.Config, version string) ServerConfig {
	return ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        version,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxRequestSize: cfg.App.MaxFileSize + multipartSlack,
		RateLimit:      &cfg.Server.RateLimit,
	}
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *errors.Logger) (*Server, error) {
	rateLimiter, err := NewLimiter(cfg.RateLimit, logger)
	if err != nil {
		return nil, err
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		APIKeys:        NewAPIKeySet(cfg.APIKeys),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		RequestTimeout: cfg.RequestTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
		metrics:        &observability.Metrics{},
		validate:       validator.New(),
	}, nil
}

// attach wires the pipeline built at startup into the server
func (s *Server) attach(components *pipeline.Components, metrics *observability.Metrics) {
	s.components = components
	s.runner = components.Pipeline
	s.model = components.AI
	if metrics != nil {
		s.metrics = metrics
	}
}

// APIKeySet is the set of accepted API keys. It can be replaced while the
// server runs when keys rotate in Vault.
type APIKeySet struct {
	mu   sync.RWMutex
	keys map[string]bool
}

// NewAPIKeySet builds a set, ignoring empty keys
func NewAPIKeySet(keys []string) *APIKeySet {
	set := &APIKeySet{}
	set.Replace(keys)
	return set
}

// Replace swaps the accepted keys atomically
func (a *APIKeySet) Replace(keys []string) {
	// Convert API keys slice to map for O(1) lookup
	next := make(map[string]bool, len(keys))
	for _, key := range keys {
		if key != "" {
			next[key] = true
		}
	}

	a.mu.Lock()
	a.keys = next
	a.mu.Unlock()
}

// Len returns the number of accepted keys. Zero disables authentication.
func (a *APIKeySet) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.keys)
}

// Contains reports whether key is accepted
func (a *APIKeySet) Contains(key string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.keys[key]
}
