package hooks

import (
	"context"
	"html/template"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"
)

// Bus is the in-process Host. Callbacks on one hook run in ascending
// priority and, within a priority, in registration order.
type Bus struct {
	mu sync.RWMutex

	actions    map[string][]Entry
	filters    map[string][]Entry
	shortcodes map[string]Shortcode

	styles        []Asset
	scripts       []Asset
	localizations []Localization

	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		actions:    make(map[string][]Entry),
		filters:    make(map[string][]Entry),
		shortcodes: make(map[string]Shortcode),
		logger:     logger.With("component", "hooks"),
	}
}

func insertStable(list []Entry, e Entry) []Entry {
	list = append(list, e)
	slices.SortStableFunc(list, func(a, b Entry) int { return a.Priority - b.Priority })
	return list
}

func (b *Bus) RegisterAction(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.actions[e.Hook] = insertStable(b.actions[e.Hook], e)
}

func (b *Bus) RegisterFilter(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filters[e.Hook] = insertStable(b.filters[e.Hook], e)
}

func (b *Bus) RegisterShortcode(tag string, fn Shortcode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shortcodes[tag] = fn
}

func (b *Bus) EnqueueStyle(a Asset) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.styles = append(b.styles, a)
}

func (b *Bus) EnqueueScript(a Asset) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scripts = append(b.scripts, a)
}

func (b *Bus) Localize(l Localization) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.localizations = append(b.localizations, l)
}

func clip(args []any, n int) []any {
	if n < 0 {
		n = 0
	}
	if len(args) > n {
		return args[:n]
	}
	return args
}

// DoAction runs every callback registered on hook.
func (b *Bus) DoAction(ctx context.Context, hook string, args ...any) {
	b.mu.RLock()
	entries := slices.Clone(b.actions[hook])
	b.mu.RUnlock()

	if len(entries) > 0 {
		b.logger.DebugContext(ctx, "do action", "hook", hook, "callbacks", len(entries))
	}
	for _, e := range entries {
		e.action(ctx, clip(args, e.Arity)...)
	}
}

// ApplyFilters threads value through every filter registered on hook. The
// value counts towards a filter's arity.
func (b *Bus) ApplyFilters(ctx context.Context, hook string, value any, args ...any) any {
	b.mu.RLock()
	entries := slices.Clone(b.filters[hook])
	b.mu.RUnlock()

	for _, e := range entries {
		value = e.filter(ctx, value, clip(args, e.Arity-1)...)
	}
	return value
}

// Apply is ApplyFilters for a typed value. A filter returning another type
// is ignored and the previous value kept.
func Apply[T any](ctx context.Context, b *Bus, hook string, value T, args ...any) T {
	b.mu.RLock()
	entries := slices.Clone(b.filters[hook])
	b.mu.RUnlock()

	for _, e := range entries {
		out := e.filter(ctx, value, clip(args, e.Arity-1)...)
		if v, ok := out.(T); ok {
			value = v
		} else {
			b.logger.WarnContext(ctx, "filter returned unexpected type", "hook", hook, "callback", e.Callback)
		}
	}
	return value
}

func (b *Bus) HasAction(hook string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.actions[hook]) > 0
}

func (b *Bus) HasFilter(hook string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.filters[hook]) > 0
}

var openTagRe = regexp.MustCompile(`\[(\w[\w-]*)((?:\s[^\]]*)?)\]`)
var attrRe = regexp.MustCompile(`([\w-]+)\s*=\s*"([^"]*)"`)

// DoShortcode expands every registered shortcode in content. Unknown tags
// are left as written.
func (b *Bus) DoShortcode(content string) string {
	return b.expand(content, func(s string) string { return s })
}

// DoShortcodeHTML expands shortcodes in untrusted text. Text outside the
// shortcodes is HTML-escaped; callback output is inserted as is.
func (b *Bus) DoShortcodeHTML(content string) template.HTML {
	return template.HTML(b.expand(content, template.HTMLEscapeString))
}

// expand scans content left to right. A registered tag encloses everything
// up to its own [/tag] unless the same tag opens again first, in which case
// it is self-closing.
func (b *Bus) expand(content string, literal func(string) string) string {
	b.mu.RLock()
	codes := maps.Clone(b.shortcodes)
	b.mu.RUnlock()

	var out strings.Builder
	for {
		loc := openTagRe.FindStringSubmatchIndex(content)
		if loc == nil {
			out.WriteString(literal(content))
			return out.String()
		}
		out.WriteString(literal(content[:loc[0]]))

		tag := content[loc[2]:loc[3]]
		fn, ok := codes[tag]
		if !ok {
			out.WriteString(literal(content[loc[0]:loc[1]]))
			content = content[loc[1]:]
			continue
		}

		attrs := make(map[string]string)
		for _, a := range attrRe.FindAllStringSubmatch(content[loc[4]:loc[5]], -1) {
			attrs[a[1]] = a[2]
		}

		rest := content[loc[1]:]
		inner, after := enclosed(rest, tag)
		out.WriteString(fn(attrs, strings.TrimSpace(inner)))
		content = after
	}
}

// enclosed splits rest at the matching [/tag]. It returns no inner content
// when the closer is missing or the same tag reopens before it.
func enclosed(rest, tag string) (inner, after string) {
	closer := "[/" + tag + "]"
	i := strings.Index(rest, closer)
	if i < 0 {
		return "", rest
	}
	for _, m := range openTagRe.FindAllStringSubmatch(rest[:i], -1) {
		if m[1] == tag {
			return "", rest
		}
	}
	return rest[:i], rest[i+len(closer):]
}

// Shortcode runs the callback registered for tag directly.
func (b *Bus) Shortcode(tag string, attrs map[string]string, content string) (string, bool) {
	b.mu.RLock()
	fn, ok := b.shortcodes[tag]
	b.mu.RUnlock()
	if !ok {
		return "", false
	}
	return fn(attrs, content), true
}

// Manifest is the flushed asset state.
type Manifest struct {
	Styles        []Asset        `json:"styles"`
	Scripts       []Asset        `json:"scripts"`
	Localizations []Localization `json:"localizations"`
}

func (b *Bus) Manifest() Manifest {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Manifest{
		Styles:        slices.Clone(b.styles),
		Scripts:       slices.Clone(b.scripts),
		Localizations: slices.Clone(b.localizations),
	}
}

// ManifestFor returns the assets that load on page.
func (b *Bus) ManifestFor(page string) Manifest {
	m := b.Manifest()
	offPage := func(a Asset) bool { return len(a.Pages) > 0 && !slices.Contains(a.Pages, page) }
	m.Styles = slices.DeleteFunc(m.Styles, offPage)
	m.Scripts = slices.DeleteFunc(m.Scripts, offPage)
	return m
}

func (b *Bus) Styles() []Asset               { return b.Manifest().Styles }
func (b *Bus) Scripts() []Asset              { return b.Manifest().Scripts }
func (b *Bus) Localizations() []Localization { return b.Manifest().Localizations }

// Localization returns the data registered for handle under object.
func (b *Bus) Localization(handle, object string) (map[string]any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for i := len(b.localizations) - 1; i >= 0; i-- {
		l := b.localizations[i]
		if l.Handle == handle && l.Object == object {
			return l.Data, true
		}
	}
	return nil, false
}
