// Mail triage server signs users in with Google, fetches their unread Gmail
// and ranks it by urgency with an OpenAI model.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hal9000y/mail-triage/internal/api"
	"github.com/hal9000y/mail-triage/internal/auth"
	"github.com/hal9000y/mail-triage/internal/config"
	"github.com/hal9000y/mail-triage/internal/format"
	"github.com/hal9000y/mail-triage/internal/gservice"
	"github.com/hal9000y/mail-triage/internal/llm"
	"github.com/hal9000y/mail-triage/internal/logger"
	"github.com/hal9000y/mail-triage/internal/mail"
	"github.com/hal9000y/mail-triage/internal/session"
	"github.com/hal9000y/mail-triage/internal/tool"
	"github.com/hal9000y/mail-triage/internal/triage"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML config file")
	envFileParam := flag.String("env-file", "", "Path to env file")
	enableStdio := flag.Bool("stdio", false, "Also serve MCP tools over stdio")
	logFile := flag.String("log-file", "", "Path to log file, stderr when empty")

	flag.Parse()

	cfg, err := config.Load(*configFile, *envFileParam)
	if err != nil {
		panic(fmt.Errorf("config.Load failed: %w", err))
	}

	log := mustLogger(cfg.Log.Development, *logFile)
	defer func() { _ = log.Sync() }()

	if !cfg.GoogleConfigured() {
		log.Warn("GOOGLE_CLIENT_ID is not set, sign-in will fail")
	}
	if !cfg.OpenAIConfigured() {
		log.Warn("OPENAI_API_KEY is not set, triage will use fallbacks")
	}

	sessions, closeSessions := mustSessionStore(cfg, log)
	defer closeSessions()

	flow := auth.NewFlow(
		auth.NewGoogleConfig(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURI),
		auth.GoogleVerifier{},
		auth.WithStateValidation(cfg.OAuth.ValidateState),
		auth.WithExchangeTimeout(cfg.OAuth.ExchangeTimeout),
		auth.WithStateStore(auth.NewStateStore(cfg.OAuth.StateTTL)),
	)

	gmailSvc := gservice.NewGmail(cfg.Gmail.MaxResults, cfg.Gmail.CallTimeout, sessions, log.Named("gmail"))

	llmClient := llm.New(llm.Config{
		APIKey:          cfg.LLM.APIKey,
		BaseURL:         cfg.LLM.BaseURL,
		Model:           cfg.LLM.Model,
		CallTimeout:     cfg.LLM.CallTimeout,
		BreakerFailures: cfg.LLM.BreakerFailures,
		BreakerCooldown: cfg.LLM.BreakerCooldown,
	})
	prioritizer := triage.NewPrioritizer(llmClient, cfg.LLM.Concurrency, log.Named("triage"))

	norm := mail.Normalizer{}
	if cfg.Mail.HTMLFallback {
		norm.HTMLToText = format.HTMLToText
	}

	mcpServer := tool.NewServer(tool.Deps{
		Sessions:    sessions,
		Mailbox:     gmailSvc,
		Normalizer:  norm,
		Prioritizer: prioritizer,
		LLM:         llmClient,
	})
	mcpHTTP := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server { return mcpServer }, nil)

	apiSrv := api.NewServer(api.Config{
		FrontendURL:      cfg.HTTP.FrontendURL,
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		GoogleConfigured: cfg.GoogleConfigured(),
		OpenAIConfigured: cfg.OpenAIConfigured(),
	}, api.Deps{
		Auth:        flow,
		Sessions:    sessions,
		Mailbox:     gmailSvc,
		Normalizer:  norm,
		Prioritizer: prioritizer,
		LLM:         llmClient,
	}, log.Named("http"))

	apiSrv.Mount("/metrics", promhttp.Handler())
	apiSrv.Mount("/mcp", mcpHTTP)

	srv := &http.Server{
		Handler:           apiSrv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln := mustListen(cfg.HTTP.Addr)

	shutdown := make(chan os.Signal, 1)

	signal.Notify(shutdown, syscall.SIGTERM, syscall.SIGINT)

	stopHTTP, errHTTPCh := serveHTTP(srv, ln, log)
	defer stopHTTP()

	var errStdioCh <-chan error
	if *enableStdio {
		var stopStdio func()
		stopStdio, errStdioCh = serveStdio(mcpServer, log)
		defer stopStdio()
	}

	select {
	case err := <-errHTTPCh:
		log.Error("http server failed", zap.Error(err))
	case err := <-errStdioCh:
		log.Error("stdio transport failed", zap.Error(err))
	case <-shutdown:
		log.Info("shutdown signal received")
	}
}

func serveStdio(srv *mcp.Server, log *zap.Logger) (func(), <-chan error) {
	errStdioCh := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer close(errStdioCh)
		log.Info("starting stdio transport")

		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			err = fmt.Errorf("srv.Run failed: %w", err)
			errStdioCh <- err
		}
	}()

	return func() {
		cancel()

		<-errStdioCh
		log.Info("stdio transport stopped")
	}, errStdioCh
}

func serveHTTP(srv *http.Server, ln net.Listener, log *zap.Logger) (func(), <-chan error) {
	errHTTPCh := make(chan error, 1)
	go func() {
		defer close(errHTTPCh)

		log.Info("starting http server", zap.String("addr", ln.Addr().String()))

		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errHTTPCh <- fmt.Errorf("srv.Serve failed: %w", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("srv.Shutdown failed", zap.Error(err))
		}

		<-errHTTPCh
		log.Info("http server stopped")
	}, errHTTPCh
}

func mustListen(httpAddr string) net.Listener {
	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		panic(fmt.Errorf("net.Listen failed: %w", err))
	}

	return ln
}

func mustLogger(development bool, logFile string) *zap.Logger {
	var paths []string
	if logFile != "" {
		paths = append(paths, logFile)
	}

	l, err := logger.New(development, paths...)
	if err != nil {
		panic(fmt.Errorf("logger.New failed: %w", err))
	}

	return l
}

func mustSessionStore(cfg config.Config, log *zap.Logger) (session.Store, func()) {
	if cfg.Session.Backend != config.SessionBackendRedis {
		log.Info("using in-memory sessions", zap.Duration("ttl", cfg.Session.TTL))
		return session.NewMemory(cfg.Session.TTL), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		panic(fmt.Errorf("rdb.Ping failed: %w", err))
	}

	log.Info("using redis sessions", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Session.TTL))

	return session.NewRedis(rdb, cfg.Session.TTL), func() {
		if err := rdb.Close(); err != nil {
			log.Error("rdb.Close failed", zap.Error(err))
		}
	}
}
