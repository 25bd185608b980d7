package value

import (
	"fmt"
	"strconv"

	"go.yaml.in/yaml/v4"
)

// ParseYAML decodes a single YAML (or JSON) document into a Value. An empty
// document yields Null.
func ParseYAML(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding context document: %w", err)
	}
	return FromNode(&doc)
}

// FromNode converts a decoded YAML node tree into a Value.
func FromNode(n *yaml.Node) (Value, error) {
	if n == nil {
		return Null{}, nil
	}
	switch n.Kind {
	case 0:
		return Null{}, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null{}, nil
		}
		return FromNode(n.Content[0])
	case yaml.AliasNode:
		return FromNode(n.Alias)
	case yaml.SequenceNode:
		out := make(List, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := FromNode(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		out := make(Dict, len(n.Content)/2)
		if err := mergeMapping(out, n); err != nil {
			return nil, err
		}
		return out, nil
	case yaml.ScalarNode:
		return scalar(n)
	}
	return nil, fmt.Errorf("line %d: unsupported yaml node kind %v", n.Line, n.Kind)
}

func mergeMapping(out Dict, n *yaml.Node) error {
	// Explicit keys win over merged ones, so merges are applied first.
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.ShortTag() != "!!merge" {
			continue
		}
		if v.Kind == yaml.AliasNode {
			v = v.Alias
		}
		switch v.Kind {
		case yaml.MappingNode:
			if err := mergeMapping(out, v); err != nil {
				return err
			}
		case yaml.SequenceNode:
			for _, m := range v.Content {
				if m.Kind == yaml.AliasNode {
					m = m.Alias
				}
				if m.Kind != yaml.MappingNode {
					return fmt.Errorf("line %d: merge value must be a mapping", m.Line)
				}
				if err := mergeMapping(out, m); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("line %d: merge value must be a mapping", v.Line)
		}
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.ShortTag() == "!!merge" {
			continue
		}
		val, err := FromNode(v)
		if err != nil {
			return err
		}
		out[k.Value] = val
	}
	return nil
}

func scalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return Int(i), nil
		}
		// Out of int64 range; keep the magnitude as a float.
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return String(n.Value), nil
		}
		return Float(f), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Float(f), nil
	default:
		return String(n.Value), nil
	}
}

// MarshalYAML renders a Value as a YAML document.
func MarshalYAML(v Value) ([]byte, error) {
	return yaml.Marshal(ToGo(v))
}
