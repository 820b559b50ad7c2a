package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"

	"wazivo/internal/breaker"
	"wazivo/internal/config"
	"wazivo/internal/errors"
	"wazivo/internal/types"
	"wazivo/internal/utils"
)

// Observer receives the result of every analysis call
type Observer func(ctx context.Context, elapsed time.Duration, usage *TokenUsage, err error)

// Option configures a Service
type Option func(*Service)

// WithObserver reports every analysis call to observe
func WithObserver(observe Observer) Option {
	return func(s *Service) {
		s.observer = observe
	}
}

// Service turns CV text into a validated AnalysisReport
type Service struct {
	provider Provider
	prompts  *PromptStore
	breaker  *breaker.Breaker[*Response]
	model    string
	timeout  time.Duration
	maxInput int
	observer Observer
	logger   *errors.Logger
}

// NewService creates the analysis service for cfg. A missing API key is not
// an error here: the service starts without a provider and every Analyze call
// fails with AI_SERVICE_UNAVAILABLE, so the rest of the server keeps working.
func NewService(cfg *config.AIConfig, prompts *PromptStore, logger *errors.Logger, opts ...Option) (*Service, error) {
	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"temperature", cfg.Temperature,
		"timeout", cfg.Timeout,
		"max_input_chars", cfg.MaxInputChars,
		"use_system_prompts", cfg.UseSystemPrompts)

	if cfg.APIKey == "" {
		logger.Warn("AI API key is not configured; analysis requests will fail until it is set",
			"provider", cfg.Provider)
		return NewServiceWithProvider(nil, cfg, prompts, logger, opts...), nil
	}

	var provider Provider
	var err error
	switch cfg.Provider {
	case "gemini":
		provider, err = NewGeminiProvider(cfg, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
	if err != nil {
		return nil, err
	}

	return NewServiceWithProvider(provider, cfg, prompts, logger, opts...), nil
}

// NewServiceWithProvider wires an existing provider, which may be nil
func NewServiceWithProvider(provider Provider, cfg *config.AIConfig, prompts *PromptStore, logger *errors.Logger, opts ...Option) *Service {
	if prompts == nil {
		prompts = DefaultPromptStore()
	}
	s := &Service{
		provider: provider,
		prompts:  prompts,
		breaker:  breaker.New[*Response]("ai-"+cfg.Provider, cfg.CircuitBreaker, logger),
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		maxInput: cfg.MaxInputChars,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configured reports whether a provider is available
func (s *Service) Configured() bool {
	return s.provider != nil
}

// Analyze sends text to the model once and validates the reply. The report's
// JobOpportunities is always empty.
func (s *Service) Analyze(ctx context.Context, text string) (*types.AnalysisReport, error) {
	if s.provider == nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceUnavailable,
			"AI API key is not configured", nil)
	}

	input := utils.TruncateRunes(text, s.maxInput)
	if len(input) < len(text) {
		s.logger.Debug("CV text truncated before analysis",
			"original_chars", utils.RuneLen(text),
			"max_chars", s.maxInput)
	}

	start := time.Now()
	resp, err := s.generate(ctx, s.prompts.Build(input))

	var report *types.AnalysisReport
	if err == nil {
		switch result := ValidateReport(resp.Text).(type) {
		case Valid:
			report = result.Report
		case SchemaError:
			err = errors.NewAIError(errors.ErrCodeInvalidAIResponse,
				"AI response did not match the analysis schema", nil).
				WithViolations(result.Violations).
				WithContext("model", s.model)
		}
	}

	if s.observer != nil {
		var usage *TokenUsage
		if resp != nil {
			usage = resp.Usage
		}
		s.observer(ctx, time.Since(start), usage, err)
	}

	if err != nil {
		s.logger.LogError(err, "CV analysis failed", "model", s.model)
		return nil, err
	}
	return report, nil
}

type generateResult struct {
	resp *Response
	err  error
}

// generate races one provider call against the analysis timeout
func (s *Service) generate(ctx context.Context, req Request) (*Response, error) {
	callCtx := ctx
	cancel := func() {}
	if s.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
	}
	defer cancel()

	done := make(chan generateResult, 1)
	go func() {
		resp, err := s.breaker.Execute(func() (*Response, error) {
			return s.provider.Generate(callCtx, req)
		})
		done <- generateResult{resp: resp, err: err}
	}()

	select {
	case result := <-done:
		if result.err != nil {
			return nil, s.classifyProviderError(ctx, callCtx, result.err)
		}
		if result.resp == nil {
			return nil, errors.NewAIError(errors.ErrCodeInvalidAIResponse, "AI provider returned no response", nil)
		}
		return result.resp, nil
	case <-callCtx.Done():
		return nil, s.timeoutError(ctx, callCtx)
	}
}

func (s *Service) timeoutError(parent, callCtx context.Context) error {
	if parent.Err() != nil {
		// The caller gave up; this is not the model's fault.
		return parent.Err()
	}
	return errors.NewAIError(errors.ErrCodeAITimeout,
		fmt.Sprintf("AI analysis exceeded %s", s.timeout), callCtx.Err()).
		WithContext("model", s.model)
}

// classifyProviderError maps transport and API failures onto the error
// taxonomy. Anything that is not a timeout means the model is unusable right
// now.
func (s *Service) classifyProviderError(parent, callCtx context.Context, err error) error {
	if breaker.IsOpenError(err) {
		return errors.NewAIError(errors.ErrCodeAIServiceUnavailable,
			"AI service circuit breaker is open", err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) || callCtx.Err() != nil {
		return s.timeoutError(parent, callCtx)
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return s.timeoutError(parent, callCtx)
	}

	appErr := errors.NewAIError(errors.ErrCodeAIServiceUnavailable, "AI provider request failed", err).
		WithContext("model", s.model)
	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		appErr.WithContext("status", apiErr.Code)
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			appErr.Message = "AI provider rejected the API key"
		case http.StatusTooManyRequests:
			appErr.Message = "AI provider quota exhausted"
		}
	}
	return appErr
}

// GetModelInfo returns information about the AI model for health checks
func (s *Service) GetModelInfo(ctx context.Context) *ModelInfo {
	if s.provider == nil {
		return &ModelInfo{Name: s.model, Error: "AI API key is not configured"}
	}
	return s.provider.GetModelInfo(ctx)
}

// Stats returns circuit breaker statistics
func (s *Service) Stats() map[string]any {
	return map[string]any{
		"configured":      s.provider != nil,
		"model":           s.model,
		"circuit_breaker": s.breaker.GetStats(),
		"healthy":         s.breaker.IsHealthy(),
	}
}

// Close releases the provider
func (s *Service) Close() error {
	if s.provider == nil {
		return nil
	}
	return s.provider.Close()
}
