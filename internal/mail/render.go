package mail

import (
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"reflect"
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`{{\s*.+?\s*}}`)

// parseMustache replaces {{ name }} with vars[name] when the value is set and
// scalar. Anything else is left as written.
func parseMustache(s string, vars Vars) string {
	if len(vars) == 0 {
		return s
	}
	return placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.Join(strings.Fields(match), "")
		name = strings.NewReplacer("{", "", "}", "").Replace(name)

		v, ok := vars[name]
		if !ok || v == nil {
			return match
		}
		switch reflect.TypeOf(v).Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			return match
		}
		return fmt.Sprint(v)
	})
}

func renderFile(fsys fs.FS, file string, vars Vars) (string, error) {
	switch strings.ToLower(path.Ext(file)) {
	case ".tmpl":
		t, err := template.ParseFS(fsys, file)
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", file, err)
		}
		var b strings.Builder
		if err := t.Execute(&b, map[string]any(vars)); err != nil {
			return "", fmt.Errorf("execute %s: %w", file, err)
		}
		return b.String(), nil
	case ".html":
		raw, err := fs.ReadFile(fsys, file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return parseMustache(string(raw), vars), nil
	default:
		return "", fmt.Errorf("%w %q in path %s", ErrUnknownExtension, path.Ext(file), file)
	}
}
