// Package i18n holds the localized user messages for domain error codes.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// DefaultLocale is used when no supported locale matches the request.
const DefaultLocale = "en-US"

//go:embed locales/*.yaml
var localeFiles embed.FS

// Catalog renders messages for a single locale.
type Catalog struct {
	tag       language.Tag
	locale    string
	templates map[string]*template.Template
	printer   *message.Printer
}

type localeFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

var (
	loadOnce sync.Once
	catalogs map[string]*Catalog
	matcher  language.Matcher
	tags     []language.Tag
	loadErr  error
)

// Locale returns the BCP 47 tag this catalog serves.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message registered for code, filling template fields
// from metadata. Integer values are grouped per locale. Unknown codes render
// as the code itself.
func (c *Catalog) Format(code string, metadata map[string]string) string {
	tmpl, ok := c.templates[code]
	if !ok {
		return code
	}
	data := make(map[string]string, len(metadata))
	for key, value := range metadata {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			data[key] = c.printer.Sprintf("%d", n)
			continue
		}
		data[key] = value
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return code
	}
	return b.String()
}

// GetCatalog returns the closest catalog for locale, falling back to
// DefaultLocale.
func GetCatalog(locale string) *Catalog {
	loadOnce.Do(load)
	if loadErr != nil {
		panic(fmt.Sprintf("load i18n catalogs: %v", loadErr))
	}
	if strings.TrimSpace(locale) != "" {
		if _, idx, confidence := matcher.Match(language.Make(locale)); confidence != language.No {
			return catalogs[tags[idx].String()]
		}
	}
	return catalogs[DefaultLocale]
}

// SupportedLocales lists the embedded locales, default first.
func SupportedLocales() []string {
	loadOnce.Do(load)
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tag.String())
	}
	return out
}

func load() {
	entries, err := localeFiles.ReadDir("locales")
	if err != nil {
		loadErr = err
		return
	}
	catalogs = make(map[string]*Catalog, len(entries))
	for _, entry := range entries {
		catalog, err := parseLocale(path.Join("locales", entry.Name()))
		if err != nil {
			loadErr = err
			return
		}
		catalogs[catalog.locale] = catalog
	}
	def, ok := catalogs[DefaultLocale]
	if !ok {
		loadErr = fmt.Errorf("default locale %s missing", DefaultLocale)
		return
	}
	tags = []language.Tag{def.tag}
	for locale, catalog := range catalogs {
		if locale != DefaultLocale {
			tags = append(tags, catalog.tag)
		}
	}
	matcher = language.NewMatcher(tags)
}

func parseLocale(name string) (*Catalog, error) {
	data, err := localeFiles.ReadFile(name)
	if err != nil {
		return nil, err
	}
	var file localeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	tag, err := language.Parse(file.Locale)
	if err != nil {
		return nil, fmt.Errorf("locale %s: %w", name, err)
	}
	templates := make(map[string]*template.Template, len(file.Messages))
	for code, text := range file.Messages {
		tmpl, err := template.New(code).Option("missingkey=zero").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("%s: message %s: %w", name, code, err)
		}
		templates[code] = tmpl
	}
	return &Catalog{
		tag:       tag,
		locale:    tag.String(),
		templates: templates,
		printer:   message.NewPrinter(tag),
	}, nil
}
