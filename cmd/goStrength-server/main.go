// Command goStrength-server serves password strength scoring over HTTP.
//
// Run with a self-hosted signed bundle and an in-process Redis:
//
//	go run ./cmd/goStrength-server -self-host
//
// Then:
//
//	curl -s localhost:8080/meter -d '{"password":"correct horse","confirm":"correct horse"}'
//	curl -s localhost:8080/estimate -d '{"password":"correct horse"}'
//	curl -s localhost:8080/metrics
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/redis/go-redis/v9"

	goStrength "github.com/MrEthical07/goStrength"
	"github.com/MrEthical07/goStrength/bundle"
	"github.com/MrEthical07/goStrength/httpapi"
	"github.com/MrEthical07/goStrength/internal/rate"
	"github.com/MrEthical07/goStrength/metrics/export/prometheus"
)

func main() {
	var (
		addr      = flag.String("addr", ":8080", "listen address")
		src       = flag.String("src", "", "bundle URL")
		selfHost  = flag.Bool("self-host", false, "serve a signed zxcvbn bundle at /bundle and load it")
		redisAddr = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		maxReqs   = flag.Int("rate", 60, "requests per window per client; 0 disables rate limiting")
		window    = flag.Duration("window", time.Minute, "rate limit window")
		eager     = flag.Bool("eager", false, "load the bundle at startup instead of on first demand")
		title     = flag.String("site-title", "", "site title added to disallowed words")
		verbosity = flag.Int("v", 0, "log verbosity")
	)
	flag.Parse()

	stdr.SetVerbosity(*verbosity)
	logger := stdr.New(log.New(os.Stderr, "goStrength-server: ", log.LstdFlags))

	if err := run(logger, options{
		addr:      *addr,
		src:       *src,
		selfHost:  *selfHost,
		redisAddr: *redisAddr,
		maxReqs:   *maxReqs,
		window:    *window,
		eager:     *eager,
		title:     *title,
	}); err != nil {
		logger.Error(err, "server stopped")
		os.Exit(1)
	}
}

type options struct {
	addr      string
	src       string
	selfHost  bool
	redisAddr string
	maxReqs   int
	window    time.Duration
	eager     bool
	title     string
}

func run(logger logr.Logger, opts options) error {
	ln, err := net.Listen("tcp", opts.addr)
	if err != nil {
		return err
	}

	cfg := goStrength.DefaultConfig()
	cfg.Loader.Src = opts.src
	cfg.Loader.Eager = opts.eager
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true

	mux := http.NewServeMux()

	if opts.selfHost {
		body, err := selfHostedBundle(&cfg)
		if err != nil {
			_ = ln.Close()
			return err
		}
		mux.HandleFunc("GET /bundle", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/jwt")
			_, _ = w.Write(body)
		})
		cfg.Loader.Src = "http://" + loopback(ln.Addr()) + "/bundle"
	}

	var limiter *rate.Limiter
	if opts.maxReqs > 0 {
		client, cleanup, err := redisClient(logger, opts.redisAddr)
		if err != nil {
			_ = ln.Close()
			return err
		}
		defer cleanup()

		cfg.RateLimit.Enabled = true
		cfg.RateLimit.MaxRequests = opts.maxReqs
		cfg.RateLimit.Window = opts.window
		limiter, err = rate.New(client, rate.Config{
			MaxRequests: cfg.RateLimit.MaxRequests,
			Window:      cfg.RateLimit.Window,
			KeyPrefix:   cfg.RateLimit.KeyPrefix,
		})
		if err != nil {
			_ = ln.Close()
			return err
		}
	}

	engine, err := goStrength.New().
		WithConfig(cfg).
		WithLogger(logger.WithName("engine")).
		Build()
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer engine.Close()

	apiOpts := httpapi.Options{SiteTitle: opts.title}
	if limiter != nil {
		apiOpts.Limiter = limiter
	}
	mux.Handle("/", httpapi.NewHandler(engine, apiOpts))
	mux.Handle("GET /metrics", prometheus.NewPrometheusExporter(engine).Handler())

	for _, issue := range engine.Report().Issues {
		logger.Info("configuration issue", "issue", issue)
	}

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", ln.Addr().String(), "src", cfg.Loader.Src)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// selfHostedBundle signs a zxcvbn manifest with a fresh secret and pins its digest in cfg.
func selfHostedBundle(cfg *goStrength.Config) ([]byte, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate bundle secret: %w", err)
	}

	token, err := bundle.Sign(bundle.Manifest{Engine: "zxcvbn", Version: "self-hosted"}, bundle.MethodHS256, secret, "goStrength-server")
	if err != nil {
		return nil, fmt.Errorf("sign bundle: %w", err)
	}
	body := []byte(token)

	cfg.Bundle.SigningMethod = string(bundle.MethodHS256)
	cfg.Bundle.PrivateKey = secret
	cfg.Bundle.Issuer = "goStrength-server"
	cfg.Bundle.RequireSignature = true
	cfg.Bundle.Digest = bundle.Digest(body)
	return body, nil
}

func redisClient(logger logr.Logger, addr string) (redis.UniversalClient, func(), error) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start miniredis: %w", err)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		logger.Info("using miniredis", "addr", mr.Addr())
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	logger.Info("using redis", "addr", addr)
	return client, func() { _ = client.Close() }, nil
}

// loopback rewrites a wildcard listen address so the engine can fetch from itself.
func loopback(a net.Addr) string {
	host, port, err := net.SplitHostPort(a.String())
	if err != nil {
		return a.String()
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}
