package vanilla

import (
	"sort"
	"strings"

	"github.com/goliatone/go-specviz/pkg/render"
)

// Semantic class names applied to the form chrome.
const (
	ClassForm    = "sv-form"
	ClassSection = "sv-section"
	ClassErrors  = "sv-errors"
	ClassActions = "sv-actions"
)

func partial(opts render.RenderOptions, key, fallback string) string {
	if opts.Theme == nil {
		return fallback
	}
	if candidate := strings.TrimSpace(opts.Theme.Partials[key]); candidate != "" {
		return candidate
	}
	return fallback
}

// CSSVars renders the theme variables as an inline style declaration list.
func CSSVars(opts render.RenderOptions) string {
	if opts.Theme == nil || len(opts.Theme.CSSVars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(opts.Theme.CSSVars))
	for key := range opts.Theme.CSSVars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, key := range keys {
		name := key
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(opts.Theme.CSSVars[key])
		b.WriteString("; ")
	}
	return strings.TrimSpace(b.String())
}

func assetURL(opts render.RenderOptions, name string) string {
	if opts.Theme != nil && opts.Theme.AssetURL != nil {
		if resolved := opts.Theme.AssetURL(name); resolved != "" {
			return resolved
		}
	}
	return "/assets/" + name
}

func partials(opts render.RenderOptions) map[string]string {
	if opts.Theme == nil {
		return nil
	}
	return opts.Theme.Partials
}
