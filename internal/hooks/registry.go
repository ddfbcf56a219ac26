// Package hooks queues callback and asset registrations and flushes them to
// a Host in one batch.
package hooks

import (
	"context"
	"strings"
)

const (
	DomainName      = "ninja"
	DefaultVersion  = "0.1.0"
	DefaultPriority = 10
	DefaultArity    = 1
)

// Action is invoked with at most Arity arguments.
type Action func(ctx context.Context, args ...any)

// Filter receives the current value and at most Arity-1 extra arguments and
// returns the value handed to the next filter.
type Filter func(ctx context.Context, value any, args ...any) any

// Shortcode expands [tag attr="v"]content[/tag].
type Shortcode func(attrs map[string]string, content string) string

// Entry is one queued action or filter registration.
type Entry struct {
	Hook     string
	Target   string
	Callback string
	Priority int
	Arity    int

	action Action
	filter Filter
}

type Option func(*Entry)

func Priority(p int) Option { return func(e *Entry) { e.Priority = p } }
func Arity(n int) Option    { return func(e *Entry) { e.Arity = n } }

// Owner names the component a callback belongs to, for logs and listings.
func Owner(target string) Option { return func(e *Entry) { e.Target = target } }

// Asset is a style or script registration. Path has no extension.
type Asset struct {
	Handle   string   `json:"handle"`
	Path     string   `json:"-"`
	Deps     []string `json:"deps,omitempty"`
	Version  string   `json:"version"`
	Vendor   bool     `json:"vendor"`
	InFooter bool     `json:"in_footer,omitempty"`
	Media    string   `json:"media,omitempty"`
	// Pages limits the asset to the named pages. Empty means every page.
	Pages []string `json:"pages,omitempty"`
	// URL is filled in by the registry when the asset is queued.
	URL string `json:"url"`
}

type Localization struct {
	Handle string         `json:"handle"`
	Object string         `json:"object"`
	Data   map[string]any `json:"data"`
}

type shortcodeEntry struct {
	tag string
	fn  Shortcode
}

// Host is the event system a Registry flushes into.
type Host interface {
	RegisterAction(e Entry)
	RegisterFilter(e Entry)
	RegisterShortcode(tag string, fn Shortcode)
	EnqueueStyle(a Asset)
	EnqueueScript(a Asset)
	Localize(l Localization)
}

// Registry buffers registrations until Run. Queues are never drained, so a
// second Run registers every entry again; call Run once per Registry.
type Registry struct {
	production bool
	baseURL    string

	actions       []Entry
	filters       []Entry
	shortcodes    []shortcodeEntry
	styles        []Asset
	scripts       []Asset
	localizations []Localization
}

// NewRegistry resolves asset paths against baseURL. In production, non-vendor
// assets get the ".min" suffix.
func NewRegistry(production bool, baseURL string) *Registry {
	return &Registry{production: production, baseURL: strings.TrimRight(baseURL, "/")}
}

func newEntry(hook, callback string, opts []Option) Entry {
	e := Entry{Hook: hook, Callback: callback, Priority: DefaultPriority, Arity: DefaultArity}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func (r *Registry) AddAction(hook, callback string, fn Action, opts ...Option) {
	e := newEntry(hook, callback, opts)
	e.action = fn
	r.actions = append(r.actions, e)
}

func (r *Registry) AddFilter(hook, callback string, fn Filter, opts ...Option) {
	e := newEntry(hook, callback, opts)
	e.filter = fn
	r.filters = append(r.filters, e)
}

func (r *Registry) AddShortcode(tag string, fn Shortcode) {
	r.shortcodes = append(r.shortcodes, shortcodeEntry{tag: tag, fn: fn})
}

func (r *Registry) AddStyle(a Asset) {
	if a.Media == "" {
		a.Media = "all"
	}
	r.styles = append(r.styles, r.resolve(a, ".css"))
}

func (r *Registry) AddScript(a Asset) {
	r.scripts = append(r.scripts, r.resolve(a, ".js"))
}

func (r *Registry) AddLocalization(handle, object string, data map[string]any) {
	r.localizations = append(r.localizations, Localization{Handle: handle, Object: object, Data: data})
}

func (r *Registry) resolve(a Asset, ext string) Asset {
	if a.Version == "" {
		a.Version = DefaultVersion
	}
	path := a.Path
	if !a.Vendor && r.production {
		path += ".min"
	}
	a.URL = r.baseURL + "/" + strings.TrimLeft(path+ext, "/")
	return a
}

// Run flushes filters, actions, shortcodes, styles, scripts and
// localizations to host, in that order.
func (r *Registry) Run(host Host) {
	for _, e := range r.filters {
		host.RegisterFilter(e)
	}
	for _, e := range r.actions {
		host.RegisterAction(e)
	}
	for _, s := range r.shortcodes {
		host.RegisterShortcode(s.tag, s.fn)
	}
	for _, a := range r.styles {
		host.EnqueueStyle(a)
	}
	for _, a := range r.scripts {
		host.EnqueueScript(a)
	}
	for _, l := range r.localizations {
		host.Localize(l)
	}
}

// Handle prefixes name with the domain, e.g. "ninja-public-style-main".
func Handle(name string) string {
	return DomainName + "-" + name
}
