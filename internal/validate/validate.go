// internal/validate/validate.go
package validate

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Mode selects how absent fields are treated.
type Mode int

const (
	// Create requires every field in the rule table to be present.
	Create Mode = iota
	// Update skips absent fields but fully checks the ones provided.
	Update
)

// Rule describes the length constraints for a single string field.
// A zero value means the constraint does not apply.
type Rule struct {
	MinLen   int
	MaxLen   int
	ExactLen int
}

// Field is a proposed value together with whether the caller supplied it.
type Field struct {
	Value   string
	Present bool
}

// Violations collects every failed constraint, keyed by field name.
type Violations map[string][]string

// Error renders the violations as a single line, fields in stable order.
func (v Violations) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var parts []string
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(v[f], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Add appends a message for a field.
func (v Violations) Add(field, message string) {
	v[field] = append(v[field], message)
}

// Merge folds another set of violations into this one.
func (v Violations) Merge(other Violations) {
	for field, messages := range other {
		v[field] = append(v[field], messages...)
	}
}

// Check applies the rule table to the proposed fields and reports every
// violation at once. A nil return means all constraints passed. Check never
// mutates its inputs; uniqueness checks against stored state are the caller's
// concern and can be merged into the returned set.
func Check(fields map[string]Field, rules map[string]Rule, mode Mode) Violations {
	violations := Violations{}

	for name, rule := range rules {
		field, ok := fields[name]
		if !ok || !field.Present {
			if mode == Create {
				violations.Add(name, fmt.Sprintf("the %s field is required", name))
			}
			continue
		}

		// A supplied empty value fails the required check in either mode.
		if field.Value == "" {
			violations.Add(name, fmt.Sprintf("the %s field is required", name))
			continue
		}

		length := utf8.RuneCountInString(field.Value)

		if rule.ExactLen > 0 && length != rule.ExactLen {
			violations.Add(name, fmt.Sprintf("the %s must be %d characters", name, rule.ExactLen))
			continue
		}
		if rule.MinLen > 0 && length < rule.MinLen {
			violations.Add(name, fmt.Sprintf("the %s must be at least %d characters", name, rule.MinLen))
		}
		if rule.MaxLen > 0 && length > rule.MaxLen {
			violations.Add(name, fmt.Sprintf("the %s may not be greater than %d characters", name, rule.MaxLen))
		}
	}

	if len(violations) == 0 {
		return nil
	}
	return violations
}

// Email reports whether the value looks like a mailbox address. The check is
// deliberately shallow: one @ with a non-empty local part and a domain
// containing a dot.
func Email(value string) bool {
	at := strings.LastIndex(value, "@")
	if at <= 0 || at == len(value)-1 {
		return false
	}
	domain := value[at+1:]
	if strings.ContainsAny(value[:at], " \t") || strings.ContainsAny(domain, " \t@") {
		return false
	}
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
