package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/tenantkyc/kycdesk/internal/auth"
	"github.com/tenantkyc/kycdesk/internal/config"
	"github.com/tenantkyc/kycdesk/internal/db"
	"github.com/tenantkyc/kycdesk/internal/handler"
	"github.com/tenantkyc/kycdesk/internal/kafka"
	"github.com/tenantkyc/kycdesk/internal/logger"
	"github.com/tenantkyc/kycdesk/internal/repository"
	"github.com/tenantkyc/kycdesk/internal/router"
	"github.com/tenantkyc/kycdesk/internal/service"
	"github.com/tenantkyc/kycdesk/internal/submissions"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if addr != "" {
				cfg.HTTPAddr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides KYC_ADDR)")
	return cmd
}

type stores struct {
	users repository.UserRepository
	forms repository.FormRepository
	subs  repository.SubmissionRepository
	pool  *pgxpool.Pool
}

// openStores uses Postgres when a database URL is configured and the
// in-memory store otherwise.
func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory store; data is lost on restart")
		return &stores{
			users: repository.NewMemoryUserRepo(),
			forms: repository.NewMemoryFormRepo(),
			subs:  repository.NewMemorySubmissionRepo(),
		}, nil
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.PoolSize)
	if err != nil {
		return nil, err
	}
	users := repository.NewPgUserRepo(pool)
	forms := repository.NewPgFormRepo(pool)
	subs := repository.NewPgSubmissionRepo(pool)
	for _, s := range []interface{ EnsureSchema(context.Context) error }{users, forms, subs} {
		if err := s.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}
	log.Info("connected to postgres", zap.Int("poolSize", cfg.PoolSize))
	return &stores{users: users, forms: forms, subs: subs, pool: pool}, nil
}

func newProcessor(cfg *config.Config, log *zap.Logger) *submissions.Processor {
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		log.Warn("unknown locale, falling back to English", zap.String("locale", cfg.Locale), zap.Error(err))
		tag = language.English
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Warn("unknown timezone, falling back to UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.UTC
	}
	return submissions.NewProcessor(submissions.WithLocale(tag), submissions.WithLocation(loc))
}

func serve(ctx context.Context, cfg *config.Config) error {
	log, err := logger.New(cfg.LogLevel, cfg.GelfAddr)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	var pinger handler.Pinger
	if st.pool != nil {
		defer st.pool.Close()
		pinger = st.pool
	}

	producer := kafka.New(cfg.KafkaBrokers, log)
	defer producer.Close()

	proc := newProcessor(cfg, log)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)

	// Services
	authSvc := service.NewAuthService(st.users, tokens)
	formSvc := service.NewFormService(st.forms, st.subs, cfg.PublicURL, proc.Locale())
	subSvc := service.NewSubmissionService(st.subs, st.forms, st.users, proc, log)
	shareSvc := service.NewShareService(subSvc, producer, cfg.KafkaTopic, log)

	if err := authSvc.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPass); err != nil {
		log.Warn("failed to seed admin", zap.Error(err))
	}

	// Router
	r := router.New(tokens, cfg.CORSOrigin, log,
		handler.NewAuthHandler(authSvc),
		handler.NewFormHandler(formSvc),
		handler.NewSubmissionHandler(subSvc, shareSvc),
		handler.NewPublicHandler(formSvc, subSvc),
		handler.NewDashboardHandler(formSvc),
		handler.NewAdminHandler(authSvc, formSvc),
		handler.NewHealthHandler(pinger),
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("kycdesk server starting", zap.String("addr", cfg.HTTPAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
