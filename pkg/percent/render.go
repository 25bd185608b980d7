// Package percent renders plain-text templates written with %-delimited
// directives:
//
//	%%                        a literal percent sign
//	%key%  %key|default%      substitution, with an optional literal default
//	%IF key% ... %END_IF%     rendered when key is present and non-empty
//	%EACH key% ... %END_EACH% rendered once per element of a sequence
//
// Rendering never fails. Unknown keys fall back to their default text and
// malformed directives are copied through literally.
//
// Block ends are found by the first occurrence of the closing marker, so a
// block cannot contain another block of the same kind.
package percent

import (
	"strings"

	"github.com/coinwatch/topn/pkg/value"
)

const (
	eachOpen  = "%EACH "
	eachClose = "%END_EACH%"
	ifOpen    = "%IF "
	ifClose   = "%END_IF%"
)

// Render renders tpl against root.
func Render(tpl string, root value.Value) string {
	var b strings.Builder
	renderBlock(&b, tpl, Scope{Root: root})
	return b.String()
}

func renderBlock(b *strings.Builder, t string, scope Scope) {
	for i := 0; i < len(t); {
		s := t[i:]
		if strings.HasPrefix(s, "%%") {
			b.WriteByte('%')
			i += 2
			continue
		}
		if strings.HasPrefix(s, eachOpen) {
			if key, body, n, ok := block(s, eachOpen, eachClose); ok {
				if items, isList := lookup(scope, key).(value.List); isList {
					for _, it := range items {
						renderBlock(b, body, scope.with(it))
					}
				}
				i += n
				continue
			}
			b.WriteByte('%')
			i++
			continue
		}
		if strings.HasPrefix(s, ifOpen) {
			if key, body, n, ok := block(s, ifOpen, ifClose); ok {
				if v := lookup(scope, key); v != nil && v.Truthy() {
					renderBlock(b, body, scope)
				}
				i += n
				continue
			}
			b.WriteByte('%')
			i++
			continue
		}
		if t[i] == '%' {
			end := strings.IndexByte(s[1:], '%')
			if end < 0 {
				b.WriteByte('%')
				i++
				continue
			}
			b.WriteString(substitute(s[1:1+end], scope))
			i += end + 2
			continue
		}
		b.WriteByte(t[i])
		i++
	}
}

// block splits s, which starts with open, into the trimmed tag key and the
// body up to the first close marker. n is the length consumed including the
// close marker. ok is false when either the tag or the block is unterminated.
func block(s, open, close string) (key, body string, n int, ok bool) {
	rest := s[len(open):]
	tagEnd := strings.IndexByte(rest, '%')
	if tagEnd < 0 {
		return "", "", 0, false
	}
	key = strings.TrimSpace(rest[:tagEnd])
	rest = rest[tagEnd+1:]
	bodyEnd := strings.Index(rest, close)
	if bodyEnd < 0 {
		return "", "", 0, false
	}
	body = rest[:bodyEnd]
	n = len(open) + tagEnd + 1 + bodyEnd + len(close)
	return key, body, n, true
}

// substitute resolves a %key|default% token. The default is emitted as is.
func substitute(token string, scope Scope) string {
	key, def, _ := strings.Cut(token, "|")
	if v := lookup(scope, strings.TrimSpace(key)); v != nil {
		if s, ok := v.Display(); ok && s != "" {
			return s
		}
	}
	return def
}

func lookup(scope Scope, key string) value.Value {
	v, ok := scope.Resolve(key)
	if !ok {
		return nil
	}
	return v
}
