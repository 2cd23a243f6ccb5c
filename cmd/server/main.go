// Package main runs the SwapKit daemon: a composed client with keystore and
// watch-only wallets and the THORChain and Maya plugins, served over HTTP.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/yourorg/swapkit-go/internal/circuitbreaker"
	"github.com/yourorg/swapkit-go/internal/config"
	"github.com/yourorg/swapkit-go/internal/core"
	"github.com/yourorg/swapkit-go/internal/export"
	"github.com/yourorg/swapkit-go/internal/keystore"
	"github.com/yourorg/swapkit-go/internal/metrics"
	"github.com/yourorg/swapkit-go/internal/otel"
	"github.com/yourorg/swapkit-go/internal/plugin"
	"github.com/yourorg/swapkit-go/internal/security"
	"github.com/yourorg/swapkit-go/internal/thornode"
	"github.com/yourorg/swapkit-go/internal/thorplugin"
	"github.com/yourorg/swapkit-go/internal/wallet"
	"github.com/yourorg/swapkit-go/internal/watchonly"
	"golang.org/x/time/rate"
)

// startTime records when the service was initialized for uptime reporting
var startTime = time.Now()

// Server is the daemon instance
type Server struct {
	cfg      config.Config
	client   *core.Client
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	exporter *export.Exporter
	nodes    []*thornode.Client
	limiter  *rate.Limiter
	server   *http.Server
}

// main is the entry point for the application
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	setupLogging(cfg)

	shutdownTracer := otel.InitTracer(cfg)
	defer shutdownTracer()

	server, err := NewServer(cfg, prometheus.NewRegistry())
	if err != nil {
		logrus.Fatalf("Failed to create server: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Node.RequestTimeout)
	err = server.connectConfiguredWallets(ctx)
	cancel()
	if err != nil {
		logrus.Fatalf("Failed to connect configured wallets: %v", err)
	}

	server.Start()
}

// setupLogging configures the logging for the application
func setupLogging(cfg config.Config) {
	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	logrus.Info("Logging configured")
}

// NewServer wires node clients, plugins, connectors and the exporter into
// a composed client
func NewServer(cfg config.Config, reg *prometheus.Registry) (*Server, error) {
	var m *metrics.Metrics
	if cfg.EnableMetrics {
		reg.MustRegister(
			prometheus.NewGoCollector(),
			prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		)
		m = metrics.New(reg)
	}

	thor := newNodeClient(cfg, thornode.NetworkThorchain, cfg.Node.ThorNodeURL, m)
	maya := newNodeClient(cfg, thornode.NetworkMayachain, cfg.Node.MayaNodeURL, m)
	exporter, err := newExporter(cfg.Export)
	if err != nil {
		return nil, err
	}
	rpcURLs := cfg.ChainRPCURLs()

	client, err := core.New(core.Options{
		Connectors: []wallet.Connector{
			keystore.Connector(),
			watchonly.Connector(),
		},
		Plugins: []plugin.Factory{
			thorplugin.Thorchain(thorplugin.WithNode(thor)),
			thorplugin.Mayachain(thorplugin.WithNode(maya)),
		},
		DefaultPlugin: plugin.Name(cfg.DefaultPlugin),
		Stagenet:      cfg.Stagenet,
		Config: wallet.ConnectConfig{
			APIKeys:  cfg.APIKeys,
			Stagenet: cfg.Stagenet,
		},
		APIs:    wallet.APIs{Balances: keystore.NewBalanceSource(rpcURLs, nil)},
		RPCURLs: rpcURLs,
		Metrics: m,
		OnTx:    exporter.Handle,
	})
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		client:   client,
		metrics:  m,
		gatherer: reg,
		exporter: exporter,
		nodes:    []*thornode.Client{thor, maya},
	}
	if cfg.RateLimit.Enabled {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
		logrus.Infof("Rate limiting initialized: %v req/s, burst: %d", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	logrus.WithFields(logrus.Fields{
		"port":           cfg.Port,
		"stagenet":       cfg.Stagenet,
		"plugins":        client.Plugins(),
		"default_plugin": client.DefaultPlugin(),
		"connectors":     client.ConnectMethods(),
		"metrics":        cfg.EnableMetrics,
		"export":         cfg.Export.Enabled,
	}).Info("Server initialized")
	return s, nil
}

func newExporter(cfg config.ExportConfig) (*export.Exporter, error) {
	if cfg.SigningKey == "" {
		return export.New(cfg), nil
	}
	signer, err := security.NewSigner(cfg.SigningKey)
	if err != nil {
		return nil, err
	}
	logrus.WithField("signer", signer.Address()).Info("Export payloads will be signed")
	return export.New(cfg, export.WithSigner(signer)), nil
}

func newNodeClient(cfg config.Config, network thornode.Network, url string, m *metrics.Metrics) *thornode.Client {
	if url == "" {
		url = thornode.BaseURL(network, cfg.Stagenet)
	}
	breaker := circuitbreaker.New(cfg.Node.FailureThreshold).
		WithResetDelay(cfg.Node.CircuitResetDelay).
		WithStateCallback(func(s circuitbreaker.State) {
			m.SetBreakerState(string(network), int(s))
		}).
		WithTripCallback(func(reason string) {
			logrus.WithField("network", network).Warnf("Node circuit opened: %s", reason)
		})

	return thornode.NewClient(url, network,
		thornode.WithRetry(cfg.Node.RetryMax, 500*time.Millisecond, 3*time.Second),
		thornode.WithRateLimit(cfg.Node.RequestsPerSecond, cfg.Node.Burst),
		thornode.WithBreaker(breaker),
		thornode.WithMetrics(m),
		thornode.WithTimeout(cfg.Node.RequestTimeout),
	)
}

// connectConfiguredWallets connects the watch-only addresses and then the
// keystore, so a keystore wallet wins for a chain configured twice
func (s *Server) connectConfiguredWallets(ctx context.Context) error {
	if addresses := s.cfg.ChainWatchAddresses(); len(addresses) > 0 {
		if err := s.client.Connect(ctx, watchonly.MethodName, wallet.ConnectParams{Addresses: addresses}); err != nil {
			return err
		}
	}
	if s.cfg.Keystore.PrivateKey != "" {
		if err := s.client.Connect(ctx, keystore.MethodName, wallet.ConnectParams{
			Chains: s.cfg.KeystoreChains(),
			Secret: s.cfg.Keystore.PrivateKey,
		}); err != nil {
			return err
		}
	}
	logrus.WithField("chains", s.client.ConnectedChains()).Info("Configured wallets connected")
	return nil
}

// Start begins the HTTP server and sets up graceful shutdown
func (s *Server) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.exporter.Start(ctx)

	s.server = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("Server starting on port %s", s.cfg.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Error starting server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Server shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server shutdown failed: %v", err)
	}
	if err := s.exporter.Stop(shutdownCtx); err != nil {
		logrus.Errorf("Final transaction export failed: %v", err)
	}

	logrus.Info("Server stopped")
}
