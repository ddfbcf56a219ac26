package main

import (
	"context"
	"errors"
	"html/template"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ninjahub/ninjahub-core/config"
	"github.com/ninjahub/ninjahub-core/internal/cryptox"
	"github.com/ninjahub/ninjahub-core/internal/domain"
	"github.com/ninjahub/ninjahub-core/internal/email"
	"github.com/ninjahub/ninjahub-core/internal/forms"
	"github.com/ninjahub/ninjahub-core/internal/health"
	"github.com/ninjahub/ninjahub-core/internal/hooks"
	"github.com/ninjahub/ninjahub-core/internal/i18n"
	"github.com/ninjahub/ninjahub-core/internal/infrastructure/postgres"
	ctxlog "github.com/ninjahub/ninjahub-core/internal/log"
	"github.com/ninjahub/ninjahub-core/internal/mail"
	"github.com/ninjahub/ninjahub-core/internal/metrics"
	"github.com/ninjahub/ninjahub-core/internal/site"
	"github.com/ninjahub/ninjahub-core/internal/storage"
	httptransport "github.com/ninjahub/ninjahub-core/internal/transport/http"
	"github.com/ninjahub/ninjahub-core/internal/transport/http/handler"
	"github.com/ninjahub/ninjahub-core/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := ctxlog.New(os.Stdout, cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.WithMaxConns(cfg.DBMaxConns))
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if cfg.MigrateOnStart {
		if err := postgres.MigrateUp(pool); err != nil {
			stop()
			log.Fatalf("migrate: %v", err)
		}
		logger.Info("migrations applied")
	}

	cryptor, err := newCryptor(cfg)
	if err != nil {
		stop()
		log.Fatalf("cryptor: %v", err)
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		stop()
		log.Fatalf("storage: %v", err)
	}

	bundle, err := i18n.NewBundle()
	if err != nil {
		stop()
		log.Fatalf("i18n: %v", err)
	}
	tr := bundle.Translator(cfg.Language)

	// Repositories
	userRepo := postgres.NewUserRepository(pool)
	postRepo := postgres.NewPostRepository(pool)
	attachmentRepo := postgres.NewAttachmentRepository(pool)

	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	mailer := mail.NewMailer(sender, mail.DefaultTemplates(), cfg.ResendFrom)

	// Hooks
	bus := hooks.NewBus(logger)
	posts := usecase.NewPostService(postRepo, bus)
	accounts := usecase.NewAccountUsecase(userRepo, posts, mailer, bus, []byte(cfg.JWTSecret), logger)
	passwords := usecase.NewPasswordUsecase(userRepo, cryptor, mailer, cfg.SiteURL, logger)
	attachments := usecase.NewAttachmentUsecase(attachmentRepo, store, cryptor, bus, cfg.UploadMaxBytes, logger)

	siteOpts := site.Options{
		Environment:  cfg.Env,
		SiteURL:      cfg.SiteURL,
		AjaxURL:      strings.TrimRight(cfg.SiteURL, "/") + "/ajax",
		RecaptchaKey: cfg.RecaptchaPublicKey,
	}
	public := site.NewPublic(siteOpts, tr, accounts, logger)
	registry := hooks.NewRegistry(cfg.IsProduction(), strings.TrimRight(cfg.SiteURL, "/")+"/assets/static")
	public.Register(registry)
	site.NewAdmin(siteOpts, tr).Register(registry)
	registerAuditHooks(registry, logger)
	registry.Run(bus)

	nonces := forms.NewNonces(cfg.NonceKey())
	recaptcha := func(formName string) template.HTML {
		return hooks.Apply(ctx, bus, site.FilterRecaptchaDisplay, template.HTML(""), formName)
	}
	formFactory := func(session string) *forms.Builder {
		return forms.New(hooks.DomainName,
			forms.WithNonce(func(action string) string { return nonces.Create(action, session) }),
			forms.WithRecaptcha(recaptcha),
		)
	}

	modules := handler.ModuleListers{}
	for _, postType := range []string{domain.TypePost, domain.TypeNotification} {
		modules[postType] = usecase.NewModuleService(postType, postRepo, nil).WithShortcodes(bus.DoShortcodeHTML)
	}

	metrics.Register()
	deps := []health.Dependency{{Name: "postgres", Pinger: pool}}
	if p, ok := store.(health.Pinger); ok {
		deps = append(deps, health.Dependency{Name: "storage", Pinger: p})
	}
	checker := health.NewChecker(logger, prometheus.DefaultRegisterer, deps...)

	guard := handler.NewGuard(nonces, bus)
	handlers := httptransport.Handlers{
		Account:    handler.NewAccountHandler(accounts, guard, logger),
		Password:   handler.NewPasswordHandler(passwords, guard, formFactory, logger),
		Attachment: handler.NewAttachmentHandler(attachments, guard, logger),
		Module:     handler.NewModuleHandler(modules, logger),
		Site:       handler.NewSiteHandler(bus, logger),
		Health:     handler.NewHealthHandler(checker),
	}
	routerOpts := httptransport.Options{
		JWTKey:    []byte(cfg.JWTSecret),
		HSTS:      cfg.IsProduction(),
		AssetsDir: cfg.AssetsDir,
	}
	if cfg.StorageDriver == "local" {
		routerOpts.UploadDir = cfg.UploadDir
	}

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httptransport.NewRouter(logger, handlers, routerOpts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newCryptor(cfg *config.Config) (*cryptox.Cryptor, error) {
	var opts []cryptox.Option
	if cfg.CryptorLegacyKey != "" {
		legacy, err := cryptox.NewLegacyCBC(cfg.CryptorLegacyKey, cfg.CryptorLegacyIV)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cryptox.WithLegacy(legacy))
	}
	return cryptox.New(cfg.CryptorSecret, opts...)
}

// registerAuditHooks logs account lifecycle events.
func registerAuditHooks(r *hooks.Registry, logger *slog.Logger) {
	logger = logger.With("component", "audit")
	for _, hook := range []string{usecase.HookAfterCreateUser, usecase.HookAfterVerifyUser} {
		r.AddAction(hook, "audit_log", func(ctx context.Context, args ...any) {
			if len(args) == 0 {
				return
			}
			if u, ok := args[0].(*domain.User); ok {
				logger.InfoContext(ctx, "account event", "hook", hook, "user_id", u.ID)
			}
		}, hooks.Arity(1), hooks.Owner("audit"))
	}
}
