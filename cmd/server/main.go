package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BhanuRekulampati/item-tracker/internal/api"
	"github.com/BhanuRekulampati/item-tracker/internal/auth"
	"github.com/BhanuRekulampati/item-tracker/internal/config"
	"github.com/BhanuRekulampati/item-tracker/internal/db"
	"github.com/BhanuRekulampati/item-tracker/internal/item"
	"github.com/BhanuRekulampati/item-tracker/internal/mail"
	"github.com/BhanuRekulampati/item-tracker/internal/otp"
	"github.com/BhanuRekulampati/item-tracker/internal/store"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

func main() {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	var addr string
	fs.StringVar(&addr, "addr", "", "")
	fs.StringVar(&addr, "a", "", "")

	var dbPath string
	fs.StringVar(&dbPath, "db", "", "")
	fs.StringVar(&dbPath, "d", "", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: server [flags]

Flags override the environment (and .env):
  -a, -addr <host:port>   listen address (default: :8080)
  -d, -db <path>          SQLite database path (default: tracker.db)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

Environment:
  ADDR, DB_PATH, STORE (sqlite|memory), SESSION_SECRET,
  RESEND_API_KEY, EMAIL_FROM, ENV (development|production)
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	closeLog, err := setupLogger(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading configuration", "error", err)
		os.Exit(1)
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	// Development convenience only; config.Load rejects an empty secret in
	// production. Sessions do not survive a restart with a fresh secret.
	if cfg.SessionSecret == "" {
		secret, err := generateSecret(32)
		if err != nil {
			slog.Error("generating session secret", "error", err)
			os.Exit(1)
		}
		cfg.SessionSecret = secret
		slog.Warn("SESSION_SECRET not set, generated an ephemeral one")
	}

	var st store.Store
	switch cfg.StoreBackend {
	case "memory":
		st = store.NewMemory()
		slog.Info("using in-memory store, data is lost on exit")
	default:
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			slog.Error("opening database", "path", cfg.DBPath, "error", err)
			os.Exit(1)
		}
		defer database.Close()

		if err := db.Migrate(database); err != nil {
			slog.Error("migrating database", "error", err)
			os.Exit(1)
		}

		st = store.NewSQLite(database)
		slog.Info("database ready", "path", cfg.DBPath)
	}

	notifier := mail.New(cfg.ResendAPIKey, cfg.EmailFrom)
	authSvc := auth.NewService(st, otp.NewEngine(st), notifier, cfg.Production())
	itemSvc := item.NewService(st)

	handler := api.LoggingMiddleware(api.NewRouter(authSvc, itemSvc, st, cfg.SessionSecret, cfg.Production()))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "env", cfg.Env)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

// generateSecret returns length random bytes, hex-encoded.
func generateSecret(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
