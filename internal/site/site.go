// Package site registers the public and admin assets, localizations and
// filters on a hooks.Registry.
package site

import (
	"context"
	"html/template"
	"log/slog"
	"maps"
	"net/url"
	"strings"

	"github.com/ninjahub/ninjahub-core/internal/hooks"
	"github.com/ninjahub/ninjahub-core/internal/i18n"
)

// Filter hooks owned by this package.
const (
	FilterPermalink        = "nhml_permalink"
	FilterRecaptchaForms   = "gglcptch_add_custom_form"
	FilterRecaptchaDisplay = "gglcptch_display_recaptcha"
)

// Shortcodes registered by Public.
const (
	ShortcodeLink   = hooks.DomainName + "_link"
	ShortcodePhrase = hooks.DomainName + "_phrase"
)

// GlobalsObject is the JavaScript object name the localization is exposed as.
const GlobalsObject = "nhGlobals"

// AuthPages load the authentication script.
var AuthPages = []string{
	"account",
	"login",
	"registration",
	"registration-landing",
	"forgot-password",
	"reset-password",
	"verification",
}

// Asset handles.
var (
	HandlePublicStyleFontAwesome = hooks.Handle("public-style-fontawesome")
	HandlePublicStyleBootstrap   = hooks.Handle("public-style-bs5")
	HandlePublicStyleMain        = hooks.Handle("public-style-main")
	HandlePublicScriptBootstrap  = hooks.Handle("public-script-bs5")
	HandlePublicScriptMain       = hooks.Handle("public-script-main")
	HandlePublicScriptHome       = hooks.Handle("public-script-home")
	HandlePublicScriptAuth       = hooks.Handle("public-script-authentication")
	HandleAdminStyleMain         = hooks.Handle("admin-style-main")
	HandleAdminScriptMain        = hooks.Handle("admin-script-main")
)

// LanguageLookup resolves the site language a user picked.
type LanguageLookup interface {
	SiteLanguage(ctx context.Context, userID int64) (string, error)
}

type LanguageLookupFunc func(ctx context.Context, userID int64) (string, error)

func (f LanguageLookupFunc) SiteLanguage(ctx context.Context, userID int64) (string, error) {
	return f(ctx, userID)
}

type Options struct {
	Environment  string
	SiteURL      string
	AjaxURL      string
	RecaptchaKey string
}

// Public wires the front-end site.
type Public struct {
	opts   Options
	tr     *i18n.Translator
	langs  LanguageLookup
	logger *slog.Logger
}

func NewPublic(opts Options, tr *i18n.Translator, langs LanguageLookup, logger *slog.Logger) *Public {
	return &Public{opts: opts, tr: tr, langs: langs, logger: logger.With("component", "site.public")}
}

// Register queues the public assets, the nhGlobals localization and the
// public filters.
func (p *Public) Register(r *hooks.Registry) {
	bootstrap, style := "public/vendors/css/bootstrap5/bootstrap.min", "css/style"
	if p.tr.RTL() {
		bootstrap, style = "public/vendors/css/bootstrap5/bootstrap.rtl.min", "css/style-rtl"
	}

	r.AddStyle(hooks.Asset{Handle: HandlePublicStyleFontAwesome, Path: "public/vendors/css/fontawesome/css/all.min", Vendor: true})
	r.AddStyle(hooks.Asset{Handle: HandlePublicStyleBootstrap, Path: bootstrap, Vendor: true})
	r.AddStyle(hooks.Asset{Handle: HandlePublicStyleMain, Path: style})

	r.AddScript(hooks.Asset{
		Handle:   HandlePublicScriptBootstrap,
		Path:     "public/vendors/js/bootstrap5/bootstrap.min",
		Deps:     []string{"jquery"},
		Vendor:   true,
		InFooter: true,
	})
	r.AddScript(hooks.Asset{
		Handle:   HandlePublicScriptMain,
		Path:     "public/js/main",
		Deps:     []string{"jquery", HandlePublicScriptBootstrap},
		InFooter: true,
	})
	r.AddScript(hooks.Asset{
		Handle:   HandlePublicScriptHome,
		Path:     "public/js/home",
		Deps:     []string{"jquery", HandlePublicScriptMain},
		InFooter: true,
		Pages:    []string{"home"},
	})
	r.AddScript(hooks.Asset{
		Handle:   HandlePublicScriptAuth,
		Path:     "public/js/authentication",
		Deps:     []string{"jquery", HandlePublicScriptMain},
		InFooter: true,
		Pages:    AuthPages,
	})

	r.AddLocalization(HandlePublicScriptMain, GlobalsObject, p.Globals())

	r.AddFilter(FilterPermalink, "permalink", func(ctx context.Context, value any, args ...any) any {
		link, _ := value.(string)
		var userID int64
		if len(args) > 0 {
			userID, _ = args[0].(int64)
		}
		return p.Permalink(ctx, link, userID)
	}, hooks.Arity(2), hooks.Owner("site.public"))

	r.AddFilter(FilterRecaptchaDisplay, "recaptcha", func(_ context.Context, value any, args ...any) any {
		if len(args) == 0 {
			return value
		}
		name, _ := args[0].(string)
		return p.Recaptcha(name)
	}, hooks.Arity(2), hooks.Owner("site.public"))

	r.AddShortcode(ShortcodeLink, p.linkShortcode)
	r.AddShortcode(ShortcodePhrase, func(attrs map[string]string, _ string) string {
		return template.HTMLEscapeString(p.tr.T(attrs["id"]))
	})
}

// linkShortcode renders [ninja_link path="/x"]label[/ninja_link] as an
// anchor on the site. Paths must be site-relative; anything else renders
// the label alone.
func (p *Public) linkShortcode(attrs map[string]string, label string) string {
	path := attrs["path"]
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return template.HTMLEscapeString(label)
	}
	href := strings.TrimRight(p.opts.SiteURL, "/") + path
	if label == "" {
		label = href
	}
	return `<a href="` + template.HTMLEscapeString(href) + `">` + template.HTMLEscapeString(label) + `</a>`
}

// Globals is the nhGlobals object for the public scripts.
func (p *Public) Globals() map[string]any {
	return map[string]any{
		"domain_key":  hooks.DomainName,
		"ajaxUrl":     p.opts.AjaxURL,
		"environment": p.opts.Environment,
		"publicKey":   p.opts.RecaptchaKey,
		"phrases":     p.tr.Phrases(),
	}
}

// Permalink rewrites link into the site language of a signed-in user.
// Anonymous visitors and links already carrying the language pass through.
func (p *Public) Permalink(ctx context.Context, link string, userID int64) string {
	if userID <= 0 || p.langs == nil {
		return link
	}
	lang, err := p.langs.SiteLanguage(ctx, userID)
	if err != nil {
		p.logger.WarnContext(ctx, "site language lookup failed", "user_id", userID, "error", err)
		return link
	}
	if lang == "" {
		lang = i18n.DefaultLanguage
	}
	return localize(link, lang)
}

// localize prefixes the path with /<lang>. The default language has no
// prefix.
func localize(link, lang string) string {
	if lang == i18n.DefaultLanguage {
		return link
	}
	if strings.Contains(link, "/"+lang+"/") || strings.Contains(link, "?lang="+lang) {
		return link
	}
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	u.Path = "/" + lang + "/" + strings.TrimLeft(u.Path, "/")
	return u.String()
}

// Recaptcha renders the widget placeholder for formName, or nothing when no
// site key is configured.
func (p *Public) Recaptcha(formName string) template.HTML {
	if p.opts.RecaptchaKey == "" || formName == "" {
		return ""
	}
	return template.HTML(`<div class="g-recaptcha" data-sitekey="` + template.HTMLEscapeString(p.opts.RecaptchaKey) +
		`" data-form="` + template.HTMLEscapeString(formName) + `"></div>`)
}

// RecaptchaForm is one entry of the admin reCAPTCHA form list.
type RecaptchaForm struct {
	FormName string `json:"form_name"`
}

// RecaptchaForms are the platform forms protected by reCAPTCHA.
var RecaptchaForms = map[string]RecaptchaForm{
	"platform_login":           {FormName: "Platform Login"},
	"platform_registration":    {FormName: "Platform Registration"},
	"platform_reset_password":  {FormName: "Platform Reset Password"},
	"platform_forgot_password": {FormName: "Platform Forgot Password"},
	"attachment_handler":       {FormName: "Attachments Handler"},
}

// Admin wires the dashboard.
type Admin struct {
	opts Options
	tr   *i18n.Translator
}

func NewAdmin(opts Options, tr *i18n.Translator) *Admin {
	return &Admin{opts: opts, tr: tr}
}

func (a *Admin) Register(r *hooks.Registry) {
	r.AddStyle(hooks.Asset{Handle: HandleAdminStyleMain, Path: "admin/css/style"})
	r.AddScript(hooks.Asset{Handle: HandleAdminScriptMain, Path: "admin/js/main", Deps: []string{"jquery"}, InFooter: true})
	r.AddLocalization(HandleAdminScriptMain, GlobalsObject, map[string]any{
		"domain_key": hooks.DomainName,
		"ajaxUrl":    a.opts.AjaxURL,
		"phrases":    a.tr.Phrases(),
	})

	r.AddFilter(FilterRecaptchaForms, "recaptcha_forms", func(_ context.Context, value any, _ ...any) any {
		forms, _ := value.(map[string]RecaptchaForm)
		out := make(map[string]RecaptchaForm, len(forms)+len(RecaptchaForms))
		maps.Copy(out, forms)
		maps.Copy(out, RecaptchaForms)
		return out
	}, hooks.Owner("site.admin"))
}
