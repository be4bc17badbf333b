package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/carpenike/fitcoach/internal/coach"
	"github.com/carpenike/fitcoach/internal/config"
	"github.com/carpenike/fitcoach/internal/database"
	"github.com/carpenike/fitcoach/internal/handlers"
	"github.com/carpenike/fitcoach/internal/llm"
	"github.com/carpenike/fitcoach/internal/middleware"
	"github.com/carpenike/fitcoach/internal/reference"
	"github.com/carpenike/fitcoach/internal/routes"
	"github.com/carpenike/fitcoach/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	log := a.log

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := database.RunMigrationsContext(ctx, db)
	if err != nil {
		return err
	}
	log.Info().Str("path", filepath.Clean(cfg.DBPath)).Int("migrations_applied", applied).Msg("database ready")

	tables, err := reference.Load(ctx, cfg.NormTablePath, cfg.FacilityTablePath)
	if err != nil {
		log.Warn().Err(err).Msg("reference data unavailable, continuing without it")
	}
	log.Info().
		Int("norm_rows", tables.Norms.Len()).
		Int("facilities", tables.Facilities.Len()).
		Msg("reference data loaded")

	tc, err := handlers.NewTemplateCache(templateFS)
	if err != nil {
		return err
	}
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return fmt.Errorf("static assets: %w", err)
	}

	store := sqlite3store.New(db)
	defer store.StopCleanup()
	sessions := scs.New()
	sessions.Store = store
	sessions.Lifetime = cfg.SessionLifetime
	sessions.Cookie.HttpOnly = true
	sessions.Cookie.SameSite = http.SameSiteLaxMode
	sessions.Cookie.Secure = cfg.SecureCookies

	limiter := middleware.NewRateLimiter(cfg.LoginRateLimit, time.Minute, cfg.TrustedProxies...)
	defer limiter.Stop()
	chatLimiter := middleware.NewUserRateLimiter(cfg.ChatRateLimit, time.Minute)
	defer chatLimiter.Stop()

	c := &coach.Coach{
		DB:            db,
		Provider:      newProvider(cfg, log),
		Tables:        tables,
		Policy:        cfg.Policy(),
		WindowDays:    cfg.StatsWindowDays,
		MaxHistory:    cfg.MaxHistory,
		HistoryBudget: cfg.HistoryBudget,
		Options:       llm.Options{Temperature: cfg.LLM.Temperature, MaxTokens: cfg.LLM.MaxTokens},
		Timeout:       cfg.LLM.Timeout,
	}

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: routes.New(routes.Options{
			DB:           db,
			Sessions:     sessions,
			Templates:    tc,
			Coach:        c,
			Logger:       log,
			Static:       static,
			LoginLimiter: limiter,
			ChatLimiter:  chatLimiter,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		// Generation can take up to the provider timeout.
		WriteTimeout: cfg.LLM.Timeout + 15*time.Second,
	}

	maint := scheduler.New(db, cfg.ChatRetention, cfg.MaintenanceInterval, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return maint.Run(gctx) })
	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Bool("llm_enabled", cfg.LLMEnabled()).Msg("fitcoach listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newProvider returns the generation provider, or nil when no API key is
// configured so the coach stays in fallback mode.
func newProvider(cfg *config.Config, log zerolog.Logger) llm.Provider {
	if !cfg.LLMEnabled() {
		log.Warn().Msg("FITCOACH_OPENAI_API_KEY not set, coach replies use the fallback mode")
		return nil
	}
	openai := llm.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.LLM.Model, cfg.LLM.BaseURL)
	return llm.NewBreakerProvider(openai, llm.BreakerSettings{
		OnStateChange: func(from, to gobreaker.State) {
			log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("provider circuit state changed")
		},
	})
}
