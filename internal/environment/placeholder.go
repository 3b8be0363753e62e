package environment

import (
	"fmt"
	"strings"
)

const (
	placeholderPrefix    = "${"
	placeholderSuffix    = "}"
	placeholderSeparator = ":"
)

// PlaceholderError reports a required placeholder that could not be resolved.
type PlaceholderError struct {
	Name string
	Text string
}

func (e *PlaceholderError) Error() string {
	return fmt.Sprintf("could not resolve placeholder %q in value %q", e.Name, e.Text)
}

// ResolveRequiredPlaceholders expands every ${name} and ${name:default}
// reference in text against the property chain. An unresolvable placeholder
// without a default is an error.
func (e *Environment) ResolveRequiredPlaceholders(text string) (string, error) {
	return e.resolve(text, false)
}

// ResolvePlaceholders expands placeholders, leaving unresolvable references
// in place.
func (e *Environment) ResolvePlaceholders(text string) string {
	resolved, _ := e.resolve(text, true)
	return resolved
}

func (e *Environment) resolve(text string, ignoreUnresolvable bool) (string, error) {
	var b strings.Builder
	rest := text
	for {
		start := strings.Index(rest, placeholderPrefix)
		if start < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end := strings.Index(rest[start:], placeholderSuffix)
		if end < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end += start

		b.WriteString(rest[:start])
		inner := rest[start+len(placeholderPrefix) : end]
		rest = rest[end+len(placeholderSuffix):]

		name, fallback, hasFallback := strings.Cut(inner, placeholderSeparator)
		value, ok := e.Property(name)
		switch {
		case ok:
			b.WriteString(value)
		case hasFallback:
			b.WriteString(fallback)
		case ignoreUnresolvable:
			b.WriteString(placeholderPrefix + inner + placeholderSuffix)
		default:
			return "", &PlaceholderError{Name: name, Text: text}
		}
	}
}
