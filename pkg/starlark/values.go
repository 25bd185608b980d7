package starlark

import (
	"github.com/coinwatch/topn/pkg/value"
	"go.starlark.net/starlark"
)

// ConvertToStarlark converts a render context value to a Starlark value
func ConvertToStarlark(val value.Value) starlark.Value {
	if val == nil {
		return starlark.None
	}

	switch v := val.(type) {
	case value.String:
		return starlark.String(string(v))
	case value.Int:
		return starlark.MakeInt64(int64(v))
	case value.Float:
		return starlark.Float(float64(v))
	case value.Bool:
		return starlark.Bool(bool(v))
	case value.List:
		items := make([]starlark.Value, len(v))
		for i, item := range v {
			items[i] = ConvertToStarlark(item)
		}
		return starlark.NewList(items)
	case value.Dict:
		dict := starlark.NewDict(len(v))
		for key, item := range v {
			// SetKey only fails for unhashable keys or a frozen dict.
			_ = dict.SetKey(starlark.String(key), ConvertToStarlark(item))
		}
		return dict
	case value.Null:
		return starlark.None
	default:
		if s, ok := val.Display(); ok {
			return starlark.String(s)
		}
		return starlark.None
	}
}

// ConvertFromStarlark converts a Starlark value to a render context value
func ConvertFromStarlark(val starlark.Value) value.Value {
	if val == nil || val == starlark.None {
		return value.Null{}
	}

	switch v := val.(type) {
	case starlark.String:
		return value.String(string(v))
	case starlark.Int:
		if i, ok := v.Int64(); ok {
			return value.Int(i)
		}
		// For very large integers, convert to string
		return value.String(v.String())
	case starlark.Float:
		return value.Float(float64(v))
	case starlark.Bool:
		return value.Bool(bool(v))
	case *starlark.List:
		items := make(value.List, v.Len())
		for i := 0; i < v.Len(); i++ {
			items[i] = ConvertFromStarlark(v.Index(i))
		}
		return items
	case starlark.Tuple:
		items := make(value.List, len(v))
		for i, item := range v {
			items[i] = ConvertFromStarlark(item)
		}
		return items
	case *starlark.Dict:
		dict := make(value.Dict, v.Len())
		for _, item := range v.Items() {
			if keyStr, ok := item[0].(starlark.String); ok {
				dict[string(keyStr)] = ConvertFromStarlark(item[1])
			} else {
				dict[item[0].String()] = ConvertFromStarlark(item[1])
			}
		}
		return dict
	default:
		// Functions, sets and other types have no context form
		return value.String(val.String())
	}
}
