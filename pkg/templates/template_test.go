package templates

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coinwatch/topn/pkg/value"
)

func TestTemplateOverride(t *testing.T) {
	tempDir := t.TempDir()

	overrideContent := `name: test-template
kind: fallback
body: "override for %name%"
`
	overridePath := filepath.Join(tempDir, "test-template.yaml")
	if err := os.WriteFile(overridePath, []byte(overrideContent), 0644); err != nil {
		t.Fatalf("Failed to write override template: %v", err)
	}

	// Without a template directory the name is unknown.
	_, err := Get("test-template")
	var nf ErrTemplateNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("Expected ErrTemplateNotFound, got %v", err)
	}

	SetTemplateDir(tempDir)
	defer SetTemplateDir("")

	template, err := Get("test-template")
	if err != nil {
		t.Fatalf("Failed to get override template: %v", err)
	}
	if template.Source != overridePath {
		t.Errorf("Expected source %q, got %q", overridePath, template.Source)
	}
	if got := template.Render(value.Dict{"name": value.String("x")}); got != "override for x" {
		t.Errorf("Unexpected render: %q", got)
	}
}

func TestRawOverrideReplacesBuiltin(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, FallbackName+".template.md")
	if err := os.WriteFile(path, []byte("custom %top_n%"), 0644); err != nil {
		t.Fatalf("Failed to write override: %v", err)
	}
	promptPath := filepath.Join(tempDir, PromptName+".prompts.md")
	if err := os.WriteFile(promptPath, []byte("prompt %top_n%"), 0644); err != nil {
		t.Fatalf("Failed to write override: %v", err)
	}

	SetTemplateDir(tempDir)
	defer SetTemplateDir("")

	tpl, err := Get(FallbackName)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if tpl.Kind != KindFallback || tpl.Name != FallbackName {
		t.Errorf("Unexpected template %+v", tpl)
	}
	if got := tpl.Render(value.Dict{"top_n": value.Int(100)}); got != "custom 100" {
		t.Errorf("Unexpected render: %q", got)
	}

	tpl, err = Get(PromptName)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if tpl.Kind != KindPrompt {
		t.Errorf("Expected prompt kind, got %q", tpl.Kind)
	}
}

func TestBuiltInTemplateFallback(t *testing.T) {
	SetTemplateDir(t.TempDir())
	defer SetTemplateDir("")

	template, err := Get(FallbackName)
	if err != nil {
		t.Fatalf("Failed to get built-in template: %v", err)
	}
	if template.Source != "builtin" {
		t.Errorf("Expected builtin source, got %q", template.Source)
	}
}

func TestInvalidOverrideIsReported(t *testing.T) {
	tempDir := t.TempDir()
	bad := "name: newcoins\nkind: banner\nbody: x\n"
	if err := os.WriteFile(filepath.Join(tempDir, "newcoins.yaml"), []byte(bad), 0644); err != nil {
		t.Fatalf("Failed to write override: %v", err)
	}
	SetTemplateDir(tempDir)
	defer SetTemplateDir("")

	if _, err := Get(PromptName); err == nil || !strings.Contains(err.Error(), "kind") {
		t.Fatalf("Expected kind validation error, got %v", err)
	}
}

func TestOverrideNameMismatchRejected(t *testing.T) {
	tempDir := t.TempDir()
	content := "name: something-else\nkind: fallback\nbody: x\n"
	if err := os.WriteFile(filepath.Join(tempDir, FallbackName+".yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write override: %v", err)
	}
	SetTemplateDir(tempDir)
	defer SetTemplateDir("")

	if _, err := Get(FallbackName); err == nil || !strings.Contains(err.Error(), "something-else") {
		t.Fatalf("Expected name mismatch error, got %v", err)
	}
}

func TestBundledNamesMatchKeys(t *testing.T) {
	for _, name := range Names() {
		tpl, err := Get(name)
		if err != nil {
			t.Fatalf("Get(%q): %v", name, err)
		}
		if tpl.Name != name {
			t.Errorf("template registered as %q declares name %q", name, tpl.Name)
		}
	}
	if err := nameMatches("a", Template{Name: "b"}); err == nil {
		t.Errorf("Expected mismatch error")
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.yaml")
	if err := os.WriteFile(path, []byte("name: x\nkind: fallback\nbody: y\ncolour: red\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("Expected error for unknown field")
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != 2 || names[0] != PromptName || names[1] != FallbackName {
		t.Fatalf("Unexpected names: %v", names)
	}
}

func TestBuiltinFallbackRendering(t *testing.T) {
	tpl, err := Get(FallbackName)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	root := value.Dict{
		"top_n":   value.Int(100),
		"convert": value.String("USD"),
		"new_coins": value.List{
			value.Dict{"rank": value.Int(88), "name": value.String("Foo"), "symbol": value.String("FOO"), "market_cap": value.Float(1.5e9)},
			value.Dict{"rank": value.Int(99), "name": value.String("Bar"), "symbol": value.String("BAR")},
		},
		"exited_coins": value.List{
			value.Dict{"rank": value.Int(101), "name": value.String("Old"), "symbol": value.String("OLD")},
		},
	}
	want := "🚀 New entries in CoinMarketCap Top 100 (USD)\n\n" +
		"• #88 Foo (FOO) — mcap: 1500000000\n" +
		"• #99 Bar (BAR)\n" +
		"\n📉 Exited:\n" +
		"• #101 Old (OLD)\n"
	if got := tpl.Render(root); got != want {
		t.Fatalf("Unexpected fallback:\n%q\nwant\n%q", got, want)
	}
}

func TestBuiltinPromptMentionsHistory(t *testing.T) {
	tpl, err := Get(PromptName)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	root := value.Dict{
		"top_n":     value.Int(100),
		"new_coins": value.List{value.Dict{"name": value.String("Foo")}},
		"recent_posts": value.List{
			value.Dict{"created_at_utc": value.String("2024-01-01T00:00:00Z"), "text": value.String("earlier post")},
		},
	}
	got := tpl.Render(root)
	for _, want := range []string{"Top 100", "Foo", "earlier post", "100% plain facts"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
}
