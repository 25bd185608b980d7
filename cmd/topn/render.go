package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/coinwatch/topn/pkg/percent"
	"github.com/coinwatch/topn/pkg/starlark"
	"github.com/coinwatch/topn/pkg/templates"
	"github.com/coinwatch/topn/pkg/value"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v4"
)

var renderCmd = cobra.Command{
	Use:   "render",
	Short: "Render a template against a context file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadTopnConfig(); err != nil {
			return err
		}

		file, _ := cmd.Flags().GetString("template")
		name, _ := cmd.Flags().GetString("name")
		ctxPath, _ := cmd.Flags().GetString("context")
		sets, _ := cmd.Flags().GetStringArray("set")

		body, err := resolveTemplate(file, name)
		if err != nil {
			return err
		}

		root, err := loadRenderContext(ctxPath)
		if err != nil {
			return err
		}
		if root, err = applySets(root, sets); err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), body.Render(root))
		return nil
	},
}

// helper: pick the template body from a file path or a template name
func resolveTemplate(file, name string) (percent.TemplateString, error) {
	switch {
	case file != "" && name != "":
		return "", fmt.Errorf("--template and --name are mutually exclusive")
	case file != "":
		t, err := templates.LoadFile(file)
		if err != nil {
			return "", err
		}
		return t.Body, nil
	case name != "":
		t, err := templates.Get(name)
		if err != nil {
			return "", err
		}
		return t.Body, nil
	default:
		return "", fmt.Errorf("one of --template or --name is required")
	}
}

// helper: load a render context by file extension
func loadRenderContext(path string) (value.Value, error) {
	if path == "" {
		return value.Dict{}, nil
	}
	if filepath.Ext(path) == ".star" {
		return starlark.LoadContext(path, nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading context: %w", err)
	}
	root, err := value.ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("parsing context %s: %w", path, err)
	}
	return root, nil
}

// helper: apply KEY=VALUE overrides on the root mapping. VALUE is read as a
// YAML scalar or flow sequence; anything else stays a string.
func applySets(root value.Value, sets []string) (value.Value, error) {
	if len(sets) == 0 {
		return root, nil
	}
	dict, ok := root.(value.Dict)
	if !ok {
		if _, null := root.(value.Null); !null {
			return nil, fmt.Errorf("--set requires the context to be a mapping")
		}
		dict = value.Dict{}
	}
	out := make(value.Dict, len(dict)+len(sets))
	for k, item := range dict {
		out[k] = item
	}
	for _, kv := range sets {
		key, val, found := strings.Cut(kv, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --set %q: expected KEY=VALUE", kv)
		}
		out[key] = setValue(val)
	}
	return out, nil
}

func setValue(raw string) value.Value {
	var decoded any
	if err := yaml.Unmarshal([]byte(raw), &decoded); err != nil {
		return value.String(raw)
	}
	switch decoded.(type) {
	case nil, map[string]any, map[any]any, time.Time:
		return value.String(raw)
	}
	return value.FromGo(decoded)
}
