package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wazivo/internal/ai"
	"wazivo/internal/config"
	"wazivo/internal/observability"
	"wazivo/internal/pipeline"
)

// Start starts the HTTP server with all configured components and blocks
// until it is shut down
func (s *Server) Start() error {
	om, err := s.initializeObservability()
	if err != nil {
		return err
	}
	defer s.shutdownObservability(om)

	components, err := pipeline.Build(s.AppConfig, s.Logger, om.GetMetrics().Observers())
	if err != nil {
		return fmt.Errorf("failed to build analysis pipeline: %w", err)
	}
	defer func() {
		if err := components.Close(); err != nil {
			s.Logger.LogError(err, "Failed to close AI provider")
		}
	}()
	s.attach(components, om.GetMetrics())

	stopPromptWatcher := s.startPromptWatcher(components.Prompts)
	defer stopPromptWatcher()

	stopVaultWatcher := s.startVaultWatcher()
	defer stopVaultWatcher()

	httpServer := s.setupHTTPServer(om)
	s.displayServerInfo()

	return s.startWithGracefulShutdown(httpServer)
}

// initializeObservability sets up observability components
func (s *Server) initializeObservability() (*observability.ObservabilityManager, error) {
	obsConfig := observability.GetObservabilityConfig(s.AppConfig, s.Version)

	om, err := observability.NewObservabilityManager(obsConfig, s.AppConfig, s.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	return om, nil
}

// shutdownObservability handles observability cleanup
func (s *Server) shutdownObservability(om *observability.ObservabilityManager) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := om.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown observability")
	}
}

// startPromptWatcher hot-reloads prompt files when configured to
func (s *Server) startPromptWatcher(prompts *ai.PromptStore) func() {
	if !s.AppConfig.AI.CustomPrompts.WatchFiles {
		return func() {}
	}

	watcher := ai.NewPromptWatcher(prompts, 0, s.Logger)
	if err := watcher.Start(); err != nil {
		s.Logger.LogError(err, "Failed to start prompt watcher, prompts will not hot reload")
		return func() {}
	}
	return func() {
		if err := watcher.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop prompt watcher")
		}
	}
}

// startVaultWatcher rotates API keys from Vault while the server runs
func (s *Server) startVaultWatcher() func() {
	vaultCfg := s.AppConfig.Vault
	if !vaultCfg.Enabled || vaultCfg.Secrets.APIKeys == "" || vaultCfg.WatchInterval <= 0 {
		return func() {}
	}

	client, err := config.NewVaultClient(vaultCfg, s.Logger)
	if err != nil {
		s.Logger.LogError(err, "Failed to create Vault client, API keys will not rotate")
		return func() {}
	}

	var initialVersion int64
	if secret, err := client.GetSecretV2(vaultCfg.Secrets.APIKeys); err == nil {
		initialVersion = secret.Version
	}

	watcher := NewVaultWatcher(client, vaultCfg.Secrets.APIKeys, vaultCfg.WatchInterval, initialVersion,
		func(keys []string, err error) {
			if err == nil {
				s.APIKeys.Replace(keys)
			}
		}, s.Logger)
	if err := watcher.Start(); err != nil {
		s.Logger.LogError(err, "Failed to start Vault watcher")
		return func() {}
	}
	return watcher.Stop
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer(om *observability.ObservabilityManager) *http.Server {
	handler := om.HTTPMiddleware()(s.setupRoutes(om))
	addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.ReadTimeout,
		WriteTimeout:      s.WriteTimeout,
		IdleTimeout:       s.IdleTimeout,
	}
}

// startWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func (s *Server) startWithGracefulShutdown(server *http.Server) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.Logger.Info("Starting HTTP server", "address", server.Addr)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		s.Logger.Info("Received shutdown signal, starting graceful shutdown",
			"signal", sig.String())

		return s.performGracefulShutdown(server)
	}
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.cleanupRateLimiter()

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

// cleanupRateLimiter cleans up the rate limiter resources
func (s *Server) cleanupRateLimiter() {
	if s.RateLimiter == nil {
		return
	}
	if err := s.RateLimiter.Close(); err != nil {
		s.Logger.LogError(err, "Failed to close rate limiter")
		return
	}
	s.Logger.Info("Rate limiter cleaned up")
}
