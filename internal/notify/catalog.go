package notify

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/your-org/reunite/internal/observability"
)

// Messages is the fixed schema of named SMS templates for one locale.
// Placeholders use {{name}} syntax.
type Messages struct {
	MatchFound          string `yaml:"matchFound"`
	MatchFoundNoContact string `yaml:"matchFoundNoContact"`
	MatchConfirmed      string `yaml:"matchConfirmed"`
}

func (m Messages) complete() bool {
	return m.MatchFound != "" && m.MatchFoundNoContact != "" && m.MatchConfirmed != ""
}

// Catalog holds per-locale message templates loaded at startup. Lookup is an
// explicit two-step: try the requested locale, then the default. A missing
// translation must never prevent an SMS from being sent.
type Catalog struct {
	locales       map[string]Messages
	defaultLocale string
}

// LoadCatalog reads every <locale>.yaml in dir. A malformed or incomplete
// catalog file is logged as a warning and skipped, so lookups for that
// locale fall back to the default. The default locale itself must load.
func LoadCatalog(dir, defaultLocale string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read locales dir: %w", err)
	}

	c := &Catalog{
		locales:       make(map[string]Messages),
		defaultLocale: defaultLocale,
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		locale := strings.TrimSuffix(e.Name(), ".yaml")

		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			slog.Warn("read locale catalog", "locale", locale, "error", err)
			continue
		}

		var msgs Messages
		if err := yaml.Unmarshal(data, &msgs); err != nil {
			slog.Warn("parse locale catalog", "locale", locale, "error", err)
			continue
		}
		if !msgs.complete() {
			slog.Warn("locale catalog missing templates", "locale", locale)
			continue
		}
		c.locales[locale] = msgs
	}

	if _, ok := c.locales[defaultLocale]; !ok {
		return nil, fmt.Errorf("default locale catalog %q not loaded", defaultLocale)
	}
	return c, nil
}

// Resolve returns the message set for locale, falling back to the default
// when the locale's catalog is missing.
func (c *Catalog) Resolve(locale string) Messages {
	if msgs, ok := c.locales[locale]; ok {
		return msgs
	}
	if locale != "" && locale != c.defaultLocale {
		slog.Warn("locale catalog not found, using default", "locale", locale, "default", c.defaultLocale)
		observability.CatalogFallbacks.WithLabelValues(locale).Inc()
	}
	return c.locales[c.defaultLocale]
}

// Render substitutes {{name}} placeholders from vars.
func Render(template string, vars map[string]string) string {
	out := template
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{{"+name+"}}", value)
	}
	return out
}
