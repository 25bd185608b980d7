package templates

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/coinwatch/topn/pkg/percent"
	v "github.com/coinwatch/topn/pkg/validator"
	"github.com/coinwatch/topn/pkg/value"

	"go.yaml.in/yaml/v4"
)

type Kind string

const (
	// KindFallback templates produce the final message text directly.
	KindFallback Kind = "fallback"
	// KindPrompt templates produce the prompt handed to a drafting step.
	KindPrompt Kind = "prompt"
)

// Names of the bundled templates.
const (
	FallbackName = "telegram_post_fallback"
	PromptName   = "newcoins"
)

type Template struct {
	Name        string                 `yaml:"name"`
	Kind        Kind                   `yaml:"kind"`
	Description string                 `yaml:"description,omitempty"`
	Body        percent.TemplateString `yaml:"body"`

	// Source is where the template was loaded from; "builtin" for embedded ones.
	Source string `yaml:"-"`
}

func (t Template) Validate() error {
	return v.All(
		v.NotEmpty(t.Name, "name"),
		v.HasNoDirective(t.Name, "name"),
		v.MatchesAllowed(t.Kind, []Kind{KindFallback, KindPrompt}, "kind"),
		v.NotEmpty(string(t.Body), "body"),
	)
}

func (t Template) Render(root value.Value) string {
	return t.Body.Render(root)
}

type ErrTemplateNotFound struct{ Name string }

func (e ErrTemplateNotFound) Error() string { return "template not found: " + e.Name }

//go:embed *.yaml
var Files embed.FS

var (
	templates   = map[string]Template{}
	templateDir string
	mu          sync.RWMutex
)

// SetTemplateDir installs a directory whose files override the bundled
// templates. An empty dir removes the override.
func SetTemplateDir(dir string) {
	mu.Lock()
	defer mu.Unlock()
	templateDir = dir
}

func TemplateDir() string {
	mu.RLock()
	defer mu.RUnlock()
	return templateDir
}

// Get returns the named template, preferring an override from the template
// directory over the bundled one.
func Get(name string) (Template, error) {
	if dir := TemplateDir(); dir != "" {
		tpl, err := loadOverride(dir, name)
		if err == nil {
			return tpl, nil
		}
		var nf ErrTemplateNotFound
		if !errors.As(err, &nf) {
			return Template{}, err
		}
	}
	if tpl, ok := templates[name]; ok {
		return tpl, nil
	}
	return Template{}, ErrTemplateNotFound{name}
}

// Names lists the bundled templates.
func Names() []string {
	out := make([]string, 0, len(templates))
	for name := range templates {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// LoadFile reads a template from path. YAML files carry the full template
// definition; anything else is taken as a raw body whose kind is inferred
// from a ".prompt." infix in the file name.
func LoadFile(path string) (Template, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Template{}, err
	}
	base := filepath.Base(path)
	switch filepath.Ext(base) {
	case ".yaml", ".yml":
		tpl, err := decode(content)
		if err != nil {
			return Template{}, fmt.Errorf("failed to decode template %q: %w", path, err)
		}
		tpl.Source = path
		return tpl, tpl.Validate()
	}
	name, _, _ := strings.Cut(base, ".")
	kind := KindFallback
	if strings.Contains(base, ".prompt.") || strings.Contains(base, ".prompts.") {
		kind = KindPrompt
	}
	tpl := Template{Name: name, Kind: kind, Body: percent.TemplateString(content), Source: path}
	return tpl, tpl.Validate()
}

func loadOverride(dir, name string) (Template, error) {
	candidates := []string{
		name + ".yaml",
		name + ".template.md",
		name + ".prompt.md",
		name + ".prompts.md",
	}
	for _, c := range candidates {
		path := filepath.Join(dir, c)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Template{}, err
		}
		tpl, err := LoadFile(path)
		if err != nil {
			return Template{}, fmt.Errorf("loading override %s: %w", path, err)
		}
		if err := nameMatches(name, tpl); err != nil {
			return Template{}, fmt.Errorf("loading override %s: %w", path, err)
		}
		slog.Debug("using template override", "name", name, "path", path)
		return tpl, nil
	}
	return Template{}, ErrTemplateNotFound{name}
}

// nameMatches rejects a template registered under a name other than its own.
func nameMatches(key string, tpl Template) error {
	if tpl.Name != key {
		return fmt.Errorf("template declares name %q, expected %q", tpl.Name, key)
	}
	return nil
}

func decode(content []byte) (Template, error) {
	var tpl Template
	dec := yaml.NewDecoder(strings.NewReader(string(content)))
	dec.KnownFields(true)
	if err := dec.Decode(&tpl); err != nil {
		return Template{}, err
	}
	return tpl, nil
}

func init() {
	entries, err := Files.ReadDir(".")
	if err != nil {
		panic(err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		content, err := Files.ReadFile(name)
		if err != nil {
			panic(err)
		}
		tpl, err := decode(content)
		if err != nil {
			panic(fmt.Errorf("failed to decode template %q: %w", name, err))
		}
		if err := tpl.Validate(); err != nil {
			panic(fmt.Errorf("invalid template %q: %w", name, err))
		}
		tpl.Source = "builtin"
		templates[strings.TrimSuffix(name, ".yaml")] = tpl
	}
	if err := v.MapDict(templates, nameMatches, "bundled templates"); err != nil {
		panic(err)
	}
}
