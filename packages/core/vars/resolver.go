package vars

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ariel-mendez/restflow/packages/builtin"
)

var placeholderPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// maxPasses backstops the progress check below; interpolation never runs
// more substitution passes than this regardless of input.
const maxPasses = 10

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Resolver expands {{name}} placeholders against a Scope. Missing
// variables and unrecognized {{$name}} generators are left verbatim in
// the output; interpolation never fails.
type Resolver struct {
	scope    *Scope
	warnFunc WarnFunc
}

func NewResolver(scope *Scope) *Resolver {
	if scope == nil {
		scope = NewScope()
	}
	return &Resolver{scope: scope}
}

// SetWarnFunc sets a function to be called when a placeholder cannot be
// resolved (e.g. to print to stderr).
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	if r.warnFunc != nil {
		r.warnFunc(format, args...)
	}
}

// Interpolate expands every {{name}} placeholder in template. It runs
// repeated full passes so a variable whose value contains another
// placeholder can be expanded indirectly, and stops as soon as a pass
// produces no net reduction in the number of remaining placeholders.
// Self-referential values therefore terminate partially expanded instead
// of looping. Built-in generators are re-evaluated on every occurrence
// of every pass.
func (r *Resolver) Interpolate(template string) string {
	s := template
	prev := countPlaceholders(s)
	if prev == 0 {
		return s
	}
	for pass := 0; pass < maxPasses; pass++ {
		s = r.substitutePass(s)
		cur := countPlaceholders(s)
		if cur == 0 || cur >= prev {
			return s
		}
		prev = cur
	}
	return s
}

// InterpolateValue applies Interpolate to every string inside a
// JSON-shaped value (maps, sequences, scalars), preserving structure.
// Non-string scalars pass through unchanged.
func (r *Resolver) InterpolateValue(value any) any {
	switch v := value.(type) {
	case string:
		return r.Interpolate(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = r.InterpolateValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = r.InterpolateValue(item)
		}
		return out
	default:
		return v
	}
}

// InterpolateMap resolves every value of a string map, typically headers
// or query parameters.
func (r *Resolver) InterpolateMap(values map[string]string) map[string]string {
	result := make(map[string]string, len(values))
	for k, v := range values {
		result[k] = r.Interpolate(v)
	}
	return result
}

func (r *Resolver) substitutePass(s string) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-2])

		if strings.HasPrefix(name, "$") {
			kind, ok := builtin.Lookup(name[1:])
			if !ok {
				r.warn("unrecognized builtin generator: %s", name)
				return match
			}
			return kind.Generate()
		}

		value, ok := r.scope.Lookup(name)
		if !ok {
			r.warn("unresolved variable: %s", name)
			return match
		}
		if value == nil {
			return match
		}
		return render(value)
	})
}

func countPlaceholders(s string) int {
	return len(placeholderPattern.FindAllStringIndex(s, -1))
}

// render converts a resolved value to its canonical textual form.
// Integral floats render without a decimal point, bools as true/false.
func render(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Interpolate is a convenience wrapper for one-off expansion without
// constructing a Resolver.
func Interpolate(template string, scope *Scope) string {
	return NewResolver(scope).Interpolate(template)
}

// InterpolateValue is the structure-walking counterpart of Interpolate.
func InterpolateValue(value any, scope *Scope) any {
	return NewResolver(scope).InterpolateValue(value)
}

// HasUnresolved reports whether any placeholder in input would survive
// interpolation against the scope. Built-in generators count as
// resolvable.
func (r *Resolver) HasUnresolved(input string) bool {
	return len(r.Unresolved(input)) > 0
}

// Unresolved returns the placeholder names in input that the scope
// cannot satisfy, in order of appearance.
func (r *Resolver) Unresolved(input string) []string {
	var missing []string
	for _, match := range placeholderPattern.FindAllStringSubmatch(input, -1) {
		name := strings.TrimSpace(match[1])
		if strings.HasPrefix(name, "$") {
			if _, ok := builtin.Lookup(name[1:]); !ok {
				missing = append(missing, name)
			}
			continue
		}
		if _, ok := r.scope.Lookup(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
