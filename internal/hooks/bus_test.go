package hooks_test

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/ninjahub/ninjahub-core/internal/hooks"
)

func TestDoAction_PriorityThenRegistration(t *testing.T) {
	bus := newBus()
	r := hooks.NewRegistry(false, "")
	var order []string
	add := func(name string, p int) {
		r.AddAction("save", name, func(context.Context, ...any) { order = append(order, name) }, hooks.Priority(p))
	}
	add("late", 20)
	add("a", 10)
	add("early", 1)
	add("b", 10)
	r.Run(bus)

	bus.DoAction(context.Background(), "save")

	want := []string{"early", "a", "b", "late"}
	if !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestDoAction_ArityClipsArguments(t *testing.T) {
	bus := newBus()
	r := hooks.NewRegistry(false, "")
	var one, three []any
	r.AddAction("x", "one", func(_ context.Context, args ...any) { one = args })
	r.AddAction("x", "three", func(_ context.Context, args ...any) { three = args }, hooks.Arity(3))
	r.Run(bus)

	bus.DoAction(context.Background(), "x", 1, 2, 3, 4)

	if len(one) != 1 || one[0] != 1 {
		t.Errorf("arity 1 got %v", one)
	}
	if len(three) != 3 {
		t.Errorf("arity 3 got %v", three)
	}
}

func TestApplyFilters_Chain(t *testing.T) {
	bus := newBus()
	r := hooks.NewRegistry(false, "")
	r.AddFilter("title", "upper", func(_ context.Context, v any, _ ...any) any {
		return strings.ToUpper(v.(string))
	})
	r.AddFilter("title", "suffix", func(_ context.Context, v any, args ...any) any {
		return v.(string) + args[0].(string)
	}, hooks.Arity(2))
	r.Run(bus)

	got := bus.ApplyFilters(context.Background(), "title", "hello", "!", "ignored")
	if got != "HELLO!" {
		t.Errorf("ApplyFilters = %v, want HELLO!", got)
	}

	if v := bus.ApplyFilters(context.Background(), "untouched", 7); v != 7 {
		t.Errorf("no filters should return the value, got %v", v)
	}
}

func TestApply_TypedKeepsValueOnMismatch(t *testing.T) {
	bus := newBus()
	r := hooks.NewRegistry(false, "")
	r.AddFilter("types", "append", func(_ context.Context, v any, _ ...any) any {
		return append(v.([]string), "image/webp")
	})
	r.AddFilter("types", "broken", func(_ context.Context, _ any, _ ...any) any { return 42 })
	r.Run(bus)

	got := hooks.Apply(context.Background(), bus, "types", []string{"image/png"})
	if !slices.Equal(got, []string{"image/png", "image/webp"}) {
		t.Errorf("Apply = %v", got)
	}
}

func TestDoShortcode(t *testing.T) {
	bus := newBus()
	r := hooks.NewRegistry(false, "")
	r.AddShortcode("greet", func(attrs map[string]string, content string) string {
		return "Hello " + attrs["name"] + content
	})
	r.Run(bus)

	got := bus.DoShortcode(`<p>[greet name="Ada"]!![/greet] [unknown]</p>`)
	want := `<p>Hello Ada!! [unknown]</p>`
	if got != want {
		t.Errorf("DoShortcode = %q, want %q", got, want)
	}
}

func TestDoShortcode_SelfClosingBeforeOtherTag(t *testing.T) {
	bus := newBus()
	r := hooks.NewRegistry(false, "")
	r.AddShortcode("greet", func(map[string]string, string) string { return "HELLO" })
	r.AddShortcode("bold", func(_ map[string]string, content string) string { return "<b>" + content + "</b>" })
	r.Run(bus)

	tests := []struct{ in, want string }{
		{"[greet] and [bold]hi[/bold]", "HELLO and <b>hi</b>"},
		{"[greet][greet]x[/greet]", "HELLOHELLO"},
		{"[bold]a[/bold][bold]b[/bold]", "<b>a</b><b>b</b>"},
		{"[bold]open", "<b></b>open"},
		{"[/bold] stray", "[/bold] stray"},
		{"[greeting] [greet]", "[greeting] HELLO"},
	}
	for _, tc := range tests {
		if got := bus.DoShortcode(tc.in); got != tc.want {
			t.Errorf("DoShortcode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDoShortcodeHTML_EscapesSurroundingText(t *testing.T) {
	bus := newBus()
	r := hooks.NewRegistry(false, "")
	r.AddShortcode("bold", func(_ map[string]string, content string) string { return "<b>" + content + "</b>" })
	r.Run(bus)

	got := bus.DoShortcodeHTML(`<script>x</script> [bold]ok[/bold]`)
	want := `&lt;script&gt;x&lt;/script&gt; <b>ok</b>`
	if string(got) != want {
		t.Errorf("DoShortcodeHTML = %q, want %q", got, want)
	}
}

func TestLocalization_Lookup(t *testing.T) {
	bus := newBus()
	r := hooks.NewRegistry(false, "")
	r.AddLocalization("ninja-public-script-main", "nhGlobals", map[string]any{"domain_key": "ninja"})
	r.Run(bus)

	data, ok := bus.Localization("ninja-public-script-main", "nhGlobals")
	if !ok || data["domain_key"] != "ninja" {
		t.Errorf("Localization = %v, %v", data, ok)
	}
	if _, ok := bus.Localization("missing", "nhGlobals"); ok {
		t.Error("unexpected localization for missing handle")
	}
}

func TestShortcode_Direct(t *testing.T) {
	bus := newBus()
	r := hooks.NewRegistry(false, "")
	r.AddShortcode("year", func(map[string]string, string) string { return "2025" })
	r.Run(bus)

	if got, ok := bus.Shortcode("year", nil, ""); !ok || got != "2025" {
		t.Errorf("Shortcode = %q, %v", got, ok)
	}
	if _, ok := bus.Shortcode("nope", nil, ""); ok {
		t.Error("unknown shortcode reported as registered")
	}
}

func TestManifestFor_FiltersPageAssets(t *testing.T) {
	bus := newBus()
	r := hooks.NewRegistry(false, "")
	r.AddScript(hooks.Asset{Handle: "main", Path: "js/main"})
	r.AddScript(hooks.Asset{Handle: "auth", Path: "js/authentication", Pages: []string{"login", "reset-password"}})
	r.Run(bus)

	if got := len(bus.ManifestFor("home").Scripts); got != 1 {
		t.Errorf("home scripts = %d, want 1", got)
	}
	if got := len(bus.ManifestFor("login").Scripts); got != 2 {
		t.Errorf("login scripts = %d, want 2", got)
	}
	if got := len(bus.Scripts()); got != 2 {
		t.Errorf("full manifest lost scripts: %d", got)
	}
}
