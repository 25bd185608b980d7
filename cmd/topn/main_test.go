package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coinwatch/topn/pkg/listing"
	"github.com/coinwatch/topn/pkg/value"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("topn %s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.loadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.TopN != 100 || cfg.Convert != "USD" || cfg.HistoryLimit != 3 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.drafter() != nil {
		t.Fatalf("no drafter expected without draft_command")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "topn.config.yaml", `top_n: 50
convert: EUR
draft_command: [cat]
draft_timeout: 30s
`)
	cfg := defaultConfig()
	if err := cfg.loadConfig(path); err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.TopN != 50 || cfg.Convert != "EUR" || cfg.DraftTimeout != 30*time.Second {
		t.Fatalf("config = %+v", cfg)
	}
	if cfg.PromptTemplate == "" || cfg.drafter() == nil {
		t.Fatalf("config = %+v", cfg)
	}

	bad := writeFile(t, dir, "bad.yaml", "top_m: 5\n")
	badCfg := defaultConfig()
	if err := badCfg.loadConfig(bad); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*topnConfig)
	}{
		{"zero top_n", func(c *topnConfig) { c.TopN = 0 }},
		{"empty convert", func(c *topnConfig) { c.Convert = "" }},
		{"zero history", func(c *topnConfig) { c.HistoryLimit = 0 }},
		{"empty draft arg", func(c *topnConfig) { c.DraftCommand = []string{"llm", ""} }},
		{"bad locale", func(c *topnConfig) { c.Locale = "not a locale!" }},
		{"negative history_keep", func(c *topnConfig) { c.HistoryKeep = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestApplySets(t *testing.T) {
	root := value.Dict{"a": value.Int(1)}
	got, err := applySets(root, []string{"b=two", "c=x=y"})
	if err != nil {
		t.Fatalf("applySets: %v", err)
	}
	d := got.(value.Dict)
	if d["a"] != value.Int(1) || d["b"] != value.String("two") || d["c"] != value.String("x=y") {
		t.Fatalf("got %#v", d)
	}
	if _, ok := root["b"]; ok {
		t.Fatalf("applySets mutated its input")
	}

	if got, err := applySets(value.Null{}, []string{"k=v"}); err != nil || got.(value.Dict)["k"] != value.String("v") {
		t.Fatalf("null root: %#v, %v", got, err)
	}
	if _, err := applySets(value.List{}, []string{"k=v"}); err == nil {
		t.Fatalf("expected error for sequence root")
	}
	if _, err := applySets(root, []string{"novalue"}); err == nil {
		t.Fatalf("expected error for missing '='")
	}
}

func TestSetValue(t *testing.T) {
	tests := []struct {
		raw  string
		want value.Value
	}{
		{"two", value.String("two")},
		{"", value.String("")},
		{"100", value.Int(100)},
		{"1.5", value.Float(1.5)},
		{"false", value.Bool(false)},
		{"x=y", value.String("x=y")},
		{"a: b", value.String("a: b")},
		{"2024-01-01", value.String("2024-01-01")},
		{"18446744073709551615", value.Float(18446744073709551615)},
		{"[", value.String("[")},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := setValue(tt.raw); got != tt.want {
				t.Errorf("setValue(%q) = %#v, want %#v", tt.raw, got, tt.want)
			}
		})
	}

	list, ok := setValue("[BTC, 2]").(value.List)
	if !ok || len(list) != 2 || list[0] != value.String("BTC") || list[1] != value.Int(2) {
		t.Errorf("flow sequence = %#v", list)
	}
}

func TestLoadRenderContext(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		file    string
		content string
	}{
		{"ctx.yaml", "name: Bitcoin\n"},
		{"ctx.json", `{"name": "Bitcoin"}`},
		{"ctx.star", `name = "Bit" + "coin"` + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			root, err := loadRenderContext(writeFile(t, dir, tt.file, tt.content))
			if err != nil {
				t.Fatalf("loadRenderContext: %v", err)
			}
			if got, _ := root.Member("name"); got != value.String("Bitcoin") {
				t.Fatalf("name = %#v", got)
			}
		})
	}

	root, err := loadRenderContext("")
	if err != nil {
		t.Fatalf("empty path: %v", err)
	}
	if _, ok := root.(value.Dict); !ok {
		t.Fatalf("empty path root = %#v", root)
	}
}

func TestResolveTemplate(t *testing.T) {
	if _, err := resolveTemplate("", ""); err == nil {
		t.Fatalf("expected error without a template")
	}
	if _, err := resolveTemplate("a.md", "b"); err == nil {
		t.Fatalf("expected error with both flags")
	}
	body, err := resolveTemplate("", "telegram_post_fallback")
	if err != nil || body == "" {
		t.Fatalf("bundled template: %q, %v", body, err)
	}
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	config := writeFile(t, dir, "topn.config.yaml", "convert: EUR\n")
	prev := writeFile(t, dir, "prev.yaml", `coins:
  - {id: 1, name: Bitcoin, symbol: BTC, rank: 1}
  - {id: 2, name: Gone, symbol: GON, rank: 100}
`)
	cur := writeFile(t, dir, "cur.yaml", `top_n: 100
coins:
  - {id: 1, name: Bitcoin, symbol: BTC, rank: 1}
  - {id: 88, name: Foo, symbol: FOO, rank: 88, market_cap: 1500000000}
`)
	tpl := writeFile(t, dir, "hello.template.md", "Hello %who|world%, 100%%")
	ctx := writeFile(t, dir, "ctx.yaml", "who: topn\n")

	t.Run("render", func(t *testing.T) {
		got := execute(t, "--config", config, "render", "--template", tpl, "--context", ctx, "--set", "extra=1")
		if got != "Hello topn, 100%" {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("context", func(t *testing.T) {
		got := execute(t, "--config", config, "context", "--previous", prev, "--current", cur, "--notify-exits")
		root, err := value.ParseYAML([]byte(got))
		if err != nil {
			t.Fatalf("parse output: %v\n%s", err, got)
		}
		d := root.(value.Dict)
		if d["convert"] != value.String("EUR") || d["top_n"] != value.Int(100) {
			t.Fatalf("context = %s", got)
		}
		if exited, ok := d["exited_coins"].(value.List); !ok || len(exited) != 1 {
			t.Fatalf("exited_coins = %#v", d["exited_coins"])
		}
	})

	t.Run("notify", func(t *testing.T) {
		got := execute(t, "--config", config, "notify", "--previous", prev, "--current", cur)
		if !strings.Contains(got, "#88 Foo (FOO)") {
			t.Fatalf("got %q", got)
		}
		if strings.Contains(got, "GON") {
			t.Fatalf("exits should be left out without --notify-exits: %q", got)
		}
	})

	t.Run("templates list", func(t *testing.T) {
		got := execute(t, "--config", config, "templates", "list")
		for _, name := range []string{"newcoins", "telegram_post_fallback"} {
			if !strings.Contains(got, name) {
				t.Fatalf("missing %s in %q", name, got)
			}
		}
	})
}

func TestNotifyWriteBack(t *testing.T) {
	dir := t.TempDir()
	config := writeFile(t, dir, "topn.config.yaml", "history_keep: 10\n")
	prev := filepath.Join(dir, "state", "previous.yaml")
	history := filepath.Join(dir, "history.yaml")
	first := writeFile(t, dir, "first.yaml", `coins:
  - {id: 1, name: Bitcoin, symbol: BTC, rank: 1}
`)
	second := writeFile(t, dir, "second.yaml", `coins:
  - {id: 1, name: Bitcoin, symbol: BTC, rank: 1}
  - {id: 88, name: Foo, symbol: FOO, rank: 88}
`)

	// No previous snapshot: baseline only.
	got := execute(t, "--config", config, "notify", "--previous", prev, "--current", first, "--history", history, "--write")
	if got != "" {
		t.Fatalf("baseline run printed %q", got)
	}
	base, err := listing.LoadSnapshot(prev)
	if err != nil {
		t.Fatalf("baseline snapshot: %v", err)
	}
	if len(base.Coins) != 1 || base.TopN != 100 || base.Convert != "USD" || base.UpdatedAt.IsZero() {
		t.Fatalf("baseline = %+v", base)
	}
	if h, _ := listing.LoadHistory(history); len(h.Posts) != 0 {
		t.Fatalf("baseline run recorded posts: %+v", h)
	}

	got = execute(t, "--config", config, "notify", "--previous", prev, "--current", second, "--history", history, "--write")
	if !strings.Contains(got, "#88 Foo (FOO)") {
		t.Fatalf("got %q", got)
	}
	saved, err := listing.LoadSnapshot(prev)
	if err != nil || len(saved.Coins) != 2 {
		t.Fatalf("saved snapshot = %+v, %v", saved, err)
	}
	h, err := listing.LoadHistory(history)
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if len(h.Posts) != 1 || h.Posts[0].Text != strings.TrimSuffix(got, "\n") {
		t.Fatalf("history = %+v", h)
	}
	if m := h.Posts[0].MentionedCoins; len(m) != 1 || m[0].ID != 88 {
		t.Fatalf("mentioned_coins = %+v", m)
	}
}
