package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/coinwatch/topn/pkg/listing"
	"github.com/coinwatch/topn/pkg/templates"
	v "github.com/coinwatch/topn/pkg/validator"
	"go.yaml.in/yaml/v4"
)

type topnConfig struct {
	TemplateDir      string        `yaml:"template_dir,omitempty"`
	TopN             int           `yaml:"top_n"`
	Convert          string        `yaml:"convert"`
	ProjectName      string        `yaml:"project_name,omitempty"`
	HistoryLimit     int           `yaml:"history_limit"`
	HistoryKeep      int           `yaml:"history_keep,omitempty"`
	DraftCommand     []string      `yaml:"draft_command,omitempty"`
	DraftTimeout     time.Duration `yaml:"draft_timeout,omitempty"`
	FallbackTemplate string        `yaml:"fallback_template"`
	PromptTemplate   string        `yaml:"prompt_template"`
	Locale           string        `yaml:"locale"`
}

func defaultConfig() topnConfig {
	return topnConfig{
		TopN:             100,
		Convert:          "USD",
		ProjectName:      listing.DefaultProjectName,
		HistoryLimit:     listing.DefaultHistoryLimit,
		DraftTimeout:     2 * time.Minute,
		FallbackTemplate: templates.FallbackName,
		PromptTemplate:   templates.PromptName,
		Locale:           listing.DefaultLocale,
	}
}

func (c topnConfig) Validate() error {
	return v.All(
		v.Positive(c.TopN, "top_n"),
		v.NotEmpty(c.Convert, "convert"),
		v.Positive(c.HistoryLimit, "history_limit"),
		func() error {
			if c.HistoryKeep < 0 {
				return fmt.Errorf("history_keep must not be negative, got %d", c.HistoryKeep)
			}
			return nil
		}(),
		v.NotEmpty(c.FallbackTemplate, "fallback_template"),
		v.NotEmpty(c.PromptTemplate, "prompt_template"),
		func() error {
			if !listing.ValidLocale(c.Locale) {
				return fmt.Errorf("locale %q is not a valid language tag", c.Locale)
			}
			return nil
		}(),
		v.Map(c.DraftCommand, func(arg, description string) error {
			return v.NotEmpty(arg, description)
		}, "draft_command"),
	)
}

// loadConfig reads path over the defaults. A missing file leaves the
// defaults in place.
func (c *topnConfig) loadConfig(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("config file not found, using defaults", "path", path)
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decoding config file: %w", err)
	}
	return nil
}

// helper: load config and apply template dir
func loadTopnConfig() (topnConfig, error) {
	cfg := defaultConfig()
	if err := cfg.loadConfig(rootConfigPath); err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", rootConfigPath, err)
	}
	if cfg.TemplateDir != "" {
		templates.SetTemplateDir(cfg.TemplateDir)
	}
	return cfg, nil
}

// drafter returns the configured drafting command, or nil when none is set.
func (c topnConfig) drafter() listing.Drafter {
	if len(c.DraftCommand) == 0 {
		return nil
	}
	return listing.ExecDrafter{Argv: c.DraftCommand, Timeout: c.DraftTimeout}
}
