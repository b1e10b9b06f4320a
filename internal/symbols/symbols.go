// Package symbols turns free-text ticker input into normalized symbols.
package symbols

import "strings"

// Symbol is an uppercase ticker with no leading '$' and no surrounding space.
type Symbol string

func (s Symbol) String() string { return string(s) }

// Parse splits input on commas and whitespace, strips leading '$' sigils and
// uppercases each token. Order is preserved and duplicates are kept.
func Parse(input string) []Symbol {
	fields := strings.Fields(strings.ReplaceAll(input, ",", " "))
	out := make([]Symbol, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimLeft(f, "$")
		if f == "" {
			continue
		}
		out = append(out, Symbol(strings.ToUpper(f)))
	}
	return out
}

// ParseAll normalizes each element of an already-split list (JSON API input).
func ParseAll(in []string) []Symbol {
	out := make([]Symbol, 0, len(in))
	for _, s := range in {
		out = append(out, Parse(s)...)
	}
	return out
}

func Strings(syms []Symbol) []string {
	out := make([]string, len(syms))
	for i, s := range syms {
		out[i] = string(s)
	}
	return out
}
