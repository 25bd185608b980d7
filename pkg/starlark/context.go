package starlark

import (
	"fmt"

	"github.com/coinwatch/topn/pkg/value"
)

// LoadContext runs the script at path and returns its exported globals as
// the render context. Preset values are visible to the script and exported
// alongside whatever it defines.
func LoadContext(path string, preset value.Dict) (value.Dict, error) {
	e := NewEvaluator()
	for k, v := range preset {
		e.SetGlobal(k, v)
	}
	if _, err := e.ExecFile(path, nil); err != nil {
		return nil, fmt.Errorf("loading context script %s: %w", path, err)
	}
	return e.ExportContext(), nil
}
