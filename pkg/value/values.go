package value

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

// Value is a node in a render context tree. It defines display conversion,
// truthiness and member lookup, the only operations the renderer relies on.
type Value interface {
	// Display returns the textual form of the value. Null reports false.
	Display() (string, bool)
	// Truthy reports whether the value counts as present for conditionals.
	Truthy() bool
	// Member looks up a named field. Only Dict has members.
	Member(name string) (Value, bool)
}

// Null represents the absence of a value.
type Null struct{}

func (Null) Display() (string, bool)     { return "", false }
func (Null) Truthy() bool                { return false }
func (Null) Member(string) (Value, bool) { return nil, false }

// Bool wraps a boolean. Note that false is still truthy: conditionals test
// for presence, not for boolean value.
type Bool bool

func (b Bool) Display() (string, bool) {
	if b {
		return "true", true
	}
	return "false", true
}
func (Bool) Truthy() bool                { return true }
func (Bool) Member(string) (Value, bool) { return nil, false }

// Int is the integral form of a number.
type Int int64

func (i Int) Display() (string, bool)   { return strconv.FormatInt(int64(i), 10), true }
func (Int) Truthy() bool                { return true }
func (Int) Member(string) (Value, bool) { return nil, false }

// Float is the fractional form of a number.
type Float float64

func (f Float) Display() (string, bool) {
	return strconv.FormatFloat(float64(f), 'f', -1, 64), true
}
func (Float) Truthy() bool                { return true }
func (Float) Member(string) (Value, bool) { return nil, false }

// String wraps a string.
type String string

func (s String) Display() (string, bool)   { return string(s), true }
func (s String) Truthy() bool              { return s != "" }
func (String) Member(string) (Value, bool) { return nil, false }

// List is an ordered sequence of values.
type List []Value

func (l List) Display() (string, bool)   { return jsonText(l), true }
func (List) Truthy() bool                { return true }
func (List) Member(string) (Value, bool) { return nil, false }

// Dict is a string-keyed mapping of values.
type Dict map[string]Value

func (d Dict) Display() (string, bool) { return jsonText(d), true }
func (Dict) Truthy() bool              { return true }

func (d Dict) Member(name string) (Value, bool) {
	v, ok := d[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

var (
	_ Value = Null{}
	_ Value = Bool(false)
	_ Value = Int(0)
	_ Value = Float(0)
	_ Value = String("")
	_ Value = List(nil)
	_ Value = Dict(nil)
)

// jsonText renders containers as compact JSON. Map keys come out sorted.
func jsonText(v Value) string {
	b, err := json.Marshal(ToGo(v))
	if err != nil {
		return ""
	}
	return string(b)
}

// ToGo converts a Value back into plain Go data: nil, bool, int64, float64,
// string, []any and map[string]any.
func ToGo(v Value) any {
	switch t := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(t)
	case Int:
		return int64(t)
	case Float:
		return float64(t)
	case String:
		return string(t)
	case List:
		out := make([]any, 0, len(t))
		for _, it := range t {
			out = append(out, ToGo(it))
		}
		return out
	case Dict:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = ToGo(vv)
		}
		return out
	default:
		if s, ok := v.Display(); ok {
			return s
		}
		return nil
	}
}

// FromGo converts a Go value to a Value. Nested maps and slices are
// converted recursively; maps must have string keys.
func FromGo(v any) Value {
	if v == nil {
		return Null{}
	}
	switch t := v.(type) {
	case Value:
		return t
	case string:
		return String(t)
	case []byte:
		return String(string(t))
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return fromUint(uint64(t))
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint64:
		return fromUint(t)
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case time.Time:
		return String(t.UTC().Format(time.RFC3339))
	case fmt.Stringer:
		return String(t.String())
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return String(rv.String())
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fromUint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float())
	case reflect.Slice, reflect.Array:
		n := rv.Len()
		out := make(List, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, FromGo(rv.Index(i).Interface()))
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			out := make(Dict, rv.Len())
			it := rv.MapRange()
			for it.Next() {
				out[it.Key().String()] = FromGo(it.Value().Interface())
			}
			return out
		}
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null{}
		}
		return FromGo(rv.Elem().Interface())
	}
	return String(fmt.Sprintf("%v", v))
}

// fromUint keeps values beyond the int64 range as Float, matching how
// oversized YAML integers are read.
func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}
