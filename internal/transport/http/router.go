package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"github.com/ninjahub/ninjahub-core/internal/transport/http/handler"
	"github.com/ninjahub/ninjahub-core/internal/transport/http/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Account    *handler.AccountHandler
	Password   *handler.PasswordHandler
	Attachment *handler.AttachmentHandler
	Module     *handler.ModuleHandler
	Site       *handler.SiteHandler
	Health     *handler.HealthHandler
}

type Options struct {
	JWTKey []byte
	HSTS   bool
	// AssetsDir is served under /assets/ when non-empty.
	AssetsDir string
	// UploadDir is served under /uploads/ when non-empty.
	UploadDir string
}

func NewRouter(logger *slog.Logger, h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security(opts.HSTS))
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	r.GET("/health/live", h.Health.Live)
	r.GET("/health/ready", h.Health.Ready)

	r.GET("/nh-globals.js", h.Site.PublicGlobals)
	r.GET("/assets/manifest", h.Site.Manifest)
	if opts.AssetsDir != "" {
		r.Static("/assets/static", opts.AssetsDir)
	}
	if opts.UploadDir != "" {
		r.Static("/uploads", opts.UploadDir)
	}

	account := r.Group("/my-account")
	account.GET("/forgot-password", h.Password.ForgotPasswordPage)
	account.GET("/reset-password", h.Password.ResetPasswordPage)

	authMW := middleware.Auth(opts.JWTKey)
	limited := middleware.RateLimit(middleware.AuthLimit)

	ajax := r.Group("/ajax")
	ajax.POST("/load-more", h.Module.LoadMore)
	ajax.POST("/login", limited, h.Account.Login)
	ajax.POST("/register", limited, h.Account.Register)
	ajax.POST("/forgot-password", limited, h.Password.ForgotPassword)
	ajax.POST("/change-password", limited, h.Password.ChangePassword)

	// Signed-in actions
	ajax.POST("/verify-account", authMW, limited, h.Account.VerifyAccount)
	ajax.POST("/resend-verification", authMW, limited, h.Account.ResendVerification)
	ajax.POST("/upload-attachment", authMW, h.Attachment.Upload)
	ajax.POST("/remove-attachment", authMW, h.Attachment.Remove)

	admin := r.Group("/admin", authMW, middleware.RequireRole("administrator"))
	admin.GET("/nh-globals.js", h.Site.AdminGlobals)
	admin.GET("/recaptcha-forms", h.Site.RecaptchaForms)

	return r
}
