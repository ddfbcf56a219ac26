package hooks_test

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/ninjahub/ninjahub-core/internal/hooks"
)

func newBus() *hooks.Bus {
	return hooks.NewBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// recordingHost captures the order Run flushes into it.
type recordingHost struct {
	calls []string
}

func (h *recordingHost) RegisterAction(e hooks.Entry) { h.calls = append(h.calls, "action:"+e.Hook) }
func (h *recordingHost) RegisterFilter(e hooks.Entry) { h.calls = append(h.calls, "filter:"+e.Hook) }
func (h *recordingHost) RegisterShortcode(tag string, _ hooks.Shortcode) { h.calls = append(h.calls, "shortcode:"+tag) }
func (h *recordingHost) EnqueueStyle(a hooks.Asset) { h.calls = append(h.calls, "style:"+a.Handle) }
func (h *recordingHost) EnqueueScript(a hooks.Asset) { h.calls = append(h.calls, "script:"+a.Handle) }
func (h *recordingHost) Localize(l hooks.Localization) { h.calls = append(h.calls, "l10n:"+l.Object) }

func noopAction(context.Context, ...any) {}

func TestRun_FlushOrder(t *testing.T) {
	r := hooks.NewRegistry(false, "/assets")
	r.AddLocalization("main", "nhGlobals", nil)
	r.AddScript(hooks.Asset{Handle: "main", Path: "js/main"})
	r.AddStyle(hooks.Asset{Handle: "style", Path: "css/style"})
	r.AddShortcode("greet", func(map[string]string, string) string { return "" })
	r.AddAction("init", "boot", noopAction)
	r.AddFilter("title", "trim", func(_ context.Context, v any, _ ...any) any { return v })

	h := &recordingHost{}
	r.Run(h)

	want := []string{"filter:title", "action:init", "shortcode:greet", "style:style", "script:main", "l10n:nhGlobals"}
	if !slices.Equal(h.calls, want) {
		t.Errorf("flush order = %v, want %v", h.calls, want)
	}
}

func TestRun_SameHookSamePriorityKeepsRegistrationOrder(t *testing.T) {
	r := hooks.NewRegistry(false, "")
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		r.AddAction("ninja_after_insert_post", name, func(context.Context, ...any) {
			order = append(order, name)
		})
	}

	bus := newBus()
	r.Run(bus)
	bus.DoAction(context.Background(), "ninja_after_insert_post")

	want := []string{"first", "second", "third"}
	if !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestRun_TwiceRegistersTwice(t *testing.T) {
	r := hooks.NewRegistry(false, "")
	calls := 0
	r.AddAction("init", "count", func(context.Context, ...any) { calls++ })

	bus := newBus()
	r.Run(bus)
	r.Run(bus)
	bus.DoAction(context.Background(), "init")

	if calls != 2 {
		t.Errorf("calls = %d, want 2 after flushing twice", calls)
	}
}

func TestRun_NothingExecutesBeforeFlush(t *testing.T) {
	r := hooks.NewRegistry(false, "")
	r.AddAction("init", "boom", func(context.Context, ...any) { t.Fatal("ran before Run") })

	bus := newBus()
	bus.DoAction(context.Background(), "init")
	if bus.HasAction("init") {
		t.Error("bus has action before Run")
	}
}

func TestAssetURLs(t *testing.T) {
	tests := []struct {
		name       string
		production bool
		asset      hooks.Asset
		style      bool
		want       string
	}{
		{"dev style", false, hooks.Asset{Handle: "s", Path: "public/css/style"}, true, "/assets/public/css/style.css"},
		{"prod style", true, hooks.Asset{Handle: "s", Path: "public/css/style"}, true, "/assets/public/css/style.min.css"},
		{"prod script", true, hooks.Asset{Handle: "j", Path: "public/js/main"}, false, "/assets/public/js/main.min.js"},
		{"vendor in prod", true, hooks.Asset{Handle: "v", Path: "vendors/bootstrap5/bootstrap.min", Vendor: true}, true, "/assets/vendors/bootstrap5/bootstrap.min.css"},
		{"vendor in dev", false, hooks.Asset{Handle: "v", Path: "vendors/js/bs.min", Vendor: true}, false, "/assets/vendors/js/bs.min.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := hooks.NewRegistry(tt.production, "/assets/")
			if tt.style {
				r.AddStyle(tt.asset)
			} else {
				r.AddScript(tt.asset)
			}
			bus := newBus()
			r.Run(bus)

			m := bus.Manifest()
			var got hooks.Asset
			if tt.style {
				got = m.Styles[0]
			} else {
				got = m.Scripts[0]
			}
			if got.URL != tt.want {
				t.Errorf("URL = %q, want %q", got.URL, tt.want)
			}
			if got.Version != hooks.DefaultVersion {
				t.Errorf("Version = %q, want %q", got.Version, hooks.DefaultVersion)
			}
		})
	}
}

func TestHandle(t *testing.T) {
	if got := hooks.Handle("public-style-main"); got != "ninja-public-style-main" {
		t.Errorf("Handle = %q", got)
	}
}
