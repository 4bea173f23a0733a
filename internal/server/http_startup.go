package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"resumescan/internal/config"
)

const shutdownTimeout = 30 * time.Second

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	httpServer := s.setupHTTPServer()

	stopWatchers := s.startWatchers()
	defer stopWatchers()

	s.displayServerInfo()

	serverErrors := make(chan error, 1)
	go func() {
		s.Logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		s.releaseResources()
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		s.Logger.Info("Received shutdown signal, starting graceful shutdown")
		return s.performGracefulShutdown(httpServer)
	}
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer() *http.Server {
	return &http.Server{
		Addr:         net.JoinHostPort(s.Host, s.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}
}

// startWatchers starts the prompt file watcher and the Vault API key
// watcher when they are configured. The returned func stops both.
func (s *Server) startWatchers() func() {
	var stops []func() error

	if s.prompts != nil && len(s.prompts.Files()) > 0 {
		pw := config.NewPromptWatcher(s.prompts, 0, func(err error) {
			if err != nil {
				s.Logger.LogError(err, "Failed to reload custom prompts")
				return
			}
			s.Logger.Info("Custom prompts reloaded")
		}, s.Logger)
		if err := pw.Start(); err != nil {
			s.Logger.LogError(err, "Failed to start prompt watcher")
		} else {
			stops = append(stops, pw.Stop)
		}
	}

	if kw := s.newAPIKeyWatcher(); kw != nil {
		if err := kw.Start(); err != nil {
			s.Logger.LogError(err, "Failed to start API key watcher")
		} else {
			stops = append(stops, kw.Stop)
		}
	}

	return func() {
		for _, stop := range stops {
			if err := stop(); err != nil {
				s.Logger.LogError(err, "Failed to stop watcher")
			}
		}
	}
}

// newAPIKeyWatcher returns nil unless Vault is enabled with an API key
// path and a poll interval
func (s *Server) newAPIKeyWatcher() *APIKeyWatcher {
	if s.AppConfig == nil {
		return nil
	}
	vc := s.AppConfig.Vault
	if !vc.Enabled || vc.Secrets.APIKeys == "" || vc.PollInterval <= 0 {
		return nil
	}

	client, err := config.NewVaultClient(vc, s.Logger)
	if err != nil || client == nil {
		s.Logger.LogError(err, "Vault unavailable, API key rotation disabled")
		return nil
	}
	return NewAPIKeyWatcher(client, vc.Secrets.APIKeys, vc.PollInterval, s.SetAPIKeys, s.Logger)
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.Logger.Info("Shutting down HTTP server...")
	err := server.Shutdown(shutdownCtx)
	if err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		err = server.Close()
	}

	s.releaseResources()
	if err == nil {
		s.Logger.Info("Server shutdown completed successfully")
	}
	return err
}

// releaseResources closes the rate limiter and the optional dependencies
func (s *Server) releaseResources() {
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}

	if err := s.enricher.Close(); err != nil {
		s.Logger.LogError(err, "Failed to close AI providers")
	}
	if err := s.cache.Close(); err != nil {
		s.Logger.LogError(err, "Failed to close enrichment cache")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.obs.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown observability")
	}
}
