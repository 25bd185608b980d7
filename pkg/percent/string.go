package percent

import "github.com/coinwatch/topn/pkg/value"

// TemplateString is template source carried in config and template files.
type TemplateString string

func (t TemplateString) Render(root value.Value) string {
	return Render(string(t), root)
}

