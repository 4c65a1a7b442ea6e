// cmd/web/main.go
//
// EasyBAC lead service – HTTP entry point.
//
// Start-up sequence
// -----------------
//
//  1. Load env vars (host-wide file → .env fallback).
//
//  2. Start the daily rotating logger (tees to console in a TTY).
//
//  3. Load configuration (defaults → conf/.env → conf/global.yaml →
//     EASYBAC_ env), resolving `vault:` secrets.
//
//  4. Build the sheet appender: Google Sheets via service account, or the
//     in-memory driver for local work.
//
//  5. Optional extras: MySQL row mirror and GeoLite2 lookups.
//
//  6. Mount routes on chi with request id, real ip, recoverer, access log,
//     security headers, HTTPS redirect, and request enrichment.
//
//  7. Serve until SIGINT / SIGTERM, then drain for up to 15 s.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/easybac/landing/internal/api"
	"github.com/easybac/landing/internal/config"
	"github.com/easybac/landing/internal/database"
	"github.com/easybac/landing/internal/form"
	"github.com/easybac/landing/internal/lead"
	"github.com/easybac/landing/internal/logger"
	"github.com/easybac/landing/internal/middleware"
	"github.com/easybac/landing/internal/requestinfo"
	"github.com/easybac/landing/internal/server"
	"github.com/easybac/landing/internal/sheets"
)

const (
	serverEnvPath   = "/usr/local/etc/easybac/global.env"
	shutdownTimeout = 15 * time.Second
)

// loadEnv prefers the host-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	logOut, err := logger.New(config.RootDir(), runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logOut); err != nil {
		logOut.Fatalw("service stopped", "error", err)
	}
	logOut.Info("service stopped")
}

func run(ctx context.Context, logOut *zap.SugaredLogger) error {
	//
	// ── 1.  Configuration ──────────────────────────────────────────────
	//
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	//
	// ── 2.  Sheet appender ─────────────────────────────────────────────
	//
	sheet, closeSheet, err := openSheet(cfg.Sheets)
	if err != nil {
		return err
	}
	defer closeSheet()

	//
	// ── 3.  Optional mirror + geo ──────────────────────────────────────
	//
	var mirror form.RowMirror
	if cfg.Mirror.DSN != "" {
		db, err := database.Open(ctx, cfg.Mirror.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		m, err := database.NewMirror(db, cfg.Mirror.Table)
		if err != nil {
			return err
		}
		mirror = m
		logOut.Infow("lead mirror online", "table", cfg.Mirror.Table)
	}

	if cfg.Geo.Database != "" {
		if err := requestinfo.InitGeo(cfg.Geo.Database); err != nil {
			logOut.Warnw("geo lookups disabled", "error", err)
		} else {
			defer requestinfo.CloseGeo()
		}
	}

	//
	// ── 4.  Handlers + router ──────────────────────────────────────────
	//
	catalog := lead.NewCatalog(cfg.Courses)
	val, err := form.NewValidator(catalog)
	if err != nil {
		return err
	}
	ranges := form.Ranges{
		Students:   cfg.Sheets.StudentRange,
		Teachers:   cfg.Sheets.TeacherRange,
		Newsletter: cfg.Sheets.NewsletterRange,
	}
	h := &api.Handlers{Validator: val, Recorder: form.NewRecorder(sheet, ranges, mirror)}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(logOut))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Security)
	r.Use(middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS))
	r.Use(requestinfo.Enrich)
	h.Routes(r)

	//
	// ── 5.  Serve with graceful shutdown ───────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr, "courses", len(catalog))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logOut.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// openSheet returns the configured appender and its close func.  The Google
// client is bound to context.Background so token refresh outlives start-up.
func openSheet(c config.Sheets) (sheets.Appender, func(), error) {
	switch c.Driver {
	case config.DriverMemory:
		zap.S().Warn("using in-memory sheet driver; leads are not persisted")
		m := sheets.NewMemory()
		return m, func() { _ = m.Close() }, nil
	default:
		cli, err := sheets.Open(context.Background(), sheets.Credentials{
			ClientEmail:   c.ClientEmail,
			PrivateKey:    c.PrivateKey,
			SpreadsheetID: c.SpreadsheetID,
		}, sheets.WithValueInputOption(c.ValueInputOption))
		if err != nil {
			return nil, nil, err
		}
		zap.S().Infow("google sheets client ready", "spreadsheet", c.SpreadsheetID)
		return cli, func() { _ = cli.Close() }, nil
	}
}
