// ABOUTME: HTTP server orchestrator wiring store, gate, AI client, and dispatcher
// ABOUTME: Manages listeners (TCP or Tailscale), routes, and graceful shutdown

package server

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"tailscale.com/ipn/ipnstate"
	"tailscale.com/tsnet"

	"github.com/cosmohq/cosmo-server/internal/config"
	"github.com/cosmohq/cosmo-server/internal/dispatch"
	"github.com/cosmohq/cosmo-server/internal/genai"
	"github.com/cosmohq/cosmo-server/internal/license"
	"github.com/cosmohq/cosmo-server/internal/store"
)

// Server hosts the cosmo HTTP surface. It owns the store, the license
// gate, the AI client, and the dispatcher, and serves them over a plain
// TCP listener or an embedded Tailscale node.
type Server struct {
	config      *config.Config
	store       store.Store
	ai          aiClient
	gate        *license.Gate
	challenge   *dispatch.Challenge
	dispatcher  *dispatch.Service
	httpServer  *http.Server
	tsnetServer *tsnet.Server
	logger      *slog.Logger
}

// initStore creates the store from config, honoring the COSMO_DB_PATH
// environment override.
func initStore(cfg *config.Config) (store.Store, error) {
	dbPath := cfg.Database.Path
	if envPath := os.Getenv("COSMO_DB_PATH"); envPath != "" {
		dbPath = envPath
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// loadLicenseKeys merges inline config keys with the optional TOML keys file.
func loadLicenseKeys(cfg *config.Config) ([]string, error) {
	if cfg.License.KeysFile == "" {
		return cfg.License.Keys, nil
	}

	fileKeys, err := license.LoadKeysFile(cfg.License.KeysFile)
	if err != nil {
		return nil, fmt.Errorf("loading license keys file: %w", err)
	}
	return license.MergeKeys(cfg.License.Keys, fileKeys), nil
}

// New creates a Server with all components wired from config.
// A failing store initialization is fatal: the server never starts
// without its database.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s, err := initStore(cfg)
	if err != nil {
		return nil, err
	}

	keys, err := loadLicenseKeys(cfg)
	if err != nil {
		return nil, err
	}
	gate := license.NewGate(keys, logger)

	ai := genai.New(genai.Config{
		APIKey:         cfg.AI.APIKey,
		BaseURL:        cfg.AI.BaseURL,
		ChatModel:      cfg.AI.ChatModel,
		ImageModel:     cfg.AI.ImageModel,
		RequestTimeout: cfg.AI.RequestTimeout,
	}, logger)
	if !ai.Configured() {
		logger.Warn("no AI api key configured - chat and image routes will fail until one is set")
	}

	challenge := dispatch.NewChallenge()
	dispatcher := dispatch.New(s, ai, gate, challenge, dispatch.Options{
		Temperature:   cfg.AI.Temperature,
		TopP:          cfg.AI.TopP,
		HistoryWindow: cfg.AI.HistoryWindow,
	}, logger)

	srv := &Server{
		config:     cfg,
		store:      s,
		ai:         ai,
		gate:       gate,
		challenge:  challenge,
		dispatcher: dispatcher,
		logger:     logger.With("component", "server"),
	}

	mux := http.NewServeMux()
	srv.registerRoutes(mux)

	srv.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.withCORS(srv.withAccessLog(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return srv, nil
}

// registerRoutes wires handlers onto the mux. The license gate wraps the
// AI-cost routes; tasks and gallery stay open.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	gated := license.Middleware(s.gate)

	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/challenge", s.handleChallenge)

	mux.HandleFunc("/api/tasks", s.handleTasks)
	mux.HandleFunc("/api/tasks/", s.handleTaskByID)

	mux.Handle("/api/chat", gated(http.HandlerFunc(s.handleChat)))

	mux.HandleFunc("/api/gallery", s.handleGallery)
	mux.HandleFunc("/api/gallery/upload", s.handleGalleryUpload)
	mux.HandleFunc("/api/gallery/", s.handleGalleryByID)

	mux.Handle("/api/generate-image", gated(http.HandlerFunc(s.handleGenerateImage)))
	mux.Handle("/api/edit-image", gated(http.HandlerFunc(s.handleEditImage)))
}

// Run starts the server and blocks until the context is canceled or the
// listener fails. Returns nil on graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.setupListener(ctx)
	if err != nil {
		return err
	}

	errCh := s.startServer(ln)
	serverErr := s.waitForShutdownSignal(ctx, errCh)

	shutdownErr := s.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// setupListener creates a listener based on configuration (Tailscale or TCP).
func (s *Server) setupListener(ctx context.Context) (net.Listener, error) {
	if s.config.Tailscale.Enabled {
		if s.config.Server.HTTPAddr != "" {
			s.logger.Warn("server.http_addr is ignored when tailscale is enabled",
				"http_addr", s.config.Server.HTTPAddr,
			)
		}
		return s.setupTailscaleListener(ctx)
	}

	s.logger.Info("starting server", "http_addr", s.config.Server.HTTPAddr)
	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on HTTP address: %w", err)
	}
	return ln, nil
}

// startServer serves HTTP in a goroutine, returning an error channel.
func (s *Server) startServer(ln net.Listener) chan error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return errCh
}

// waitForShutdownSignal waits for context cancellation or a server error.
func (s *Server) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		s.logger.Error("server error", "error", err)
		return err
	}
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is
// already canceled.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown stops the HTTP server and releases resources.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", s.httpServer.Shutdown(ctx))

	if s.tsnetServer != nil {
		errs = appendCloseError(errs, "tailscale shutdown", s.tsnetServer.Close())
	}
	errs = appendCloseError(errs, "store close", s.store.Close())

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// resolveTailscaleStateDir returns the state directory, using a default
// under the user's home when not configured.
func resolveTailscaleStateDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for tailscale state (set tailscale.state_dir explicitly): %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "cosmo-server", "tailscale"), nil
}

// resolveTailscaleAuthKey returns the auth key from config or environment.
func resolveTailscaleAuthKey(configured string) (string, error) {
	authKey := configured
	if authKey == "" {
		authKey = os.Getenv("TS_AUTHKEY")
	}
	if authKey == "" {
		return "", errors.New("tailscale auth key required: set auth_key in config or TS_AUTHKEY environment variable (get one at https://login.tailscale.com/admin/settings/keys)")
	}
	return authKey, nil
}

// setupTailscaleListener starts a tsnet node and returns its HTTP listener.
func (s *Server) setupTailscaleListener(ctx context.Context) (net.Listener, error) {
	tsCfg := s.config.Tailscale

	stateDir, err := resolveTailscaleStateDir(tsCfg.StateDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return nil, fmt.Errorf("creating tailscale state dir: %w", err)
	}

	authKey, err := resolveTailscaleAuthKey(tsCfg.AuthKey)
	if err != nil {
		return nil, err
	}

	s.tsnetServer = &tsnet.Server{
		Hostname:  tsCfg.Hostname,
		Dir:       stateDir,
		Ephemeral: tsCfg.Ephemeral,
		AuthKey:   authKey,
	}

	s.logger.Info("starting tailscale node", "hostname", tsCfg.Hostname, "state_dir", stateDir, "ephemeral", tsCfg.Ephemeral)
	status, err := s.tsnetServer.Up(ctx)
	if err != nil {
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("starting tailscale: %w", err)
	}

	s.logTailscaleStatus(tsCfg.Hostname, status)
	return s.createTailscaleListener(tsCfg)
}

// logTailscaleStatus logs info about the tailscale node status.
func (s *Server) logTailscaleStatus(hostname string, status *ipnstate.Status) {
	var tsAddr, dnsName string
	if len(status.TailscaleIPs) > 0 {
		tsAddr = status.TailscaleIPs[0].String()
	} else {
		s.logger.Warn("tailscale node has no IP addresses assigned")
	}
	if status.Self != nil {
		dnsName = status.Self.DNSName
	}
	s.logger.Info("tailscale node ready", "hostname", hostname, "tailscale_ip", tsAddr, "dns_name", dnsName)
}

// createTailscaleListener creates the appropriate listener based on config.
func (s *Server) createTailscaleListener(tsCfg config.TailscaleConfig) (net.Listener, error) {
	switch {
	case tsCfg.Funnel:
		s.logger.Info("enabling tailscale funnel (public HTTPS) on :443")
		ln, err := s.tsnetServer.ListenFunnel("tcp", ":443")
		if err != nil {
			_ = s.tsnetServer.Close()
			return nil, fmt.Errorf("listening on tailscale funnel port: %w", err)
		}
		return ln, nil
	case tsCfg.CertFile != "" && tsCfg.KeyFile != "":
		return s.createTailscaleTLSListener(tsCfg)
	default:
		ln, err := s.tsnetServer.Listen("tcp", ":80")
		if err != nil {
			_ = s.tsnetServer.Close()
			return nil, fmt.Errorf("listening on tailscale HTTP port: %w", err)
		}
		return ln, nil
	}
}

// createTailscaleTLSListener creates a TLS listener from the configured
// cert and key files (generate via: tailscale cert <hostname>).
func (s *Server) createTailscaleTLSListener(tsCfg config.TailscaleConfig) (net.Listener, error) {
	s.logger.Info("enabling HTTPS with configured certs on :443")
	cert, err := tls.LoadX509KeyPair(tsCfg.CertFile, tsCfg.KeyFile)
	if err != nil {
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("loading TLS cert: %w", err)
	}

	ln, err := s.tsnetServer.Listen("tcp", ":443")
	if err != nil {
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("listening on tailscale HTTPS port: %w", err)
	}
	return tls.NewListener(ln, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}), nil
}

// healthResponse is the JSON response for GET /api/health.
type healthResponse struct {
	Status       string `json:"status"`
	AIConfigured bool   `json:"ai_configured"`
	DBConnected  bool   `json:"db_connected"`
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	resp := healthResponse{
		Status:       "ok",
		AIConfigured: s.ai.Configured(),
		DBConnected:  s.store.Ping(r.Context()) == nil,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// challengeResponse is the JSON response for GET /api/challenge.
type challengeResponse struct {
	Completed bool `json:"completed"`
	Points    int  `json:"points"`
}

// handleChallenge handles GET /api/challenge. Read-only view of the
// daily-challenge state for the UI badge.
func (s *Server) handleChallenge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	state := s.challenge.State()
	resp := challengeResponse{
		Completed: state.Completed,
		Points:    state.Points,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// sendJSON writes a JSON response with status 200.
func (s *Server) sendJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
