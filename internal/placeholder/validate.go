// =============================================================================
// Docx Mail Merge - Placeholder Validation
// =============================================================================
//
// Classifies curly fields before a template is used. Three independent
// diagnostics are produced and a field may appear in more than one:
//
//   Invalid        : not a dotted identifier, not a balanced expression,
//                    not a list literal
//   ControlInPrint : contains for/if/else/endif/endfor inside {{ }}
//   Unclosed       : looks like a stray note ("note: ...") or a dangling "if"
//
// Validation only reports. Callers decide whether to stop.
//
// =============================================================================

package placeholder

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	simpleIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
	controlKeyword   = regexp.MustCompile(`\b(for|if|else|endif|endfor)\b`)
	trailingIf       = regexp.MustCompile(`\bif$`)
)

// expressionIndicators mark a field as a template expression rather than a
// plain name.
var expressionIndicators = []string{"|", "~", "if ", "else", "default(", "trim", "join(", "reject(", "equalto"}

// IsValidField reports whether a curly field is usable by the renderer.
func IsValidField(name string) bool {
	name = strings.TrimSpace(name)

	if simpleIdentifier.MatchString(name) {
		return true
	}

	for _, indicator := range expressionIndicators {
		if strings.Contains(name, indicator) {
			return balanced(name)
		}
	}

	return strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]")
}

// IsSimpleField reports whether name is a plain (optionally dotted)
// identifier rather than an expression.
func IsSimpleField(name string) bool {
	return simpleIdentifier.MatchString(strings.TrimSpace(name))
}

// balanced checks parentheses and quote parity of an expression.
func balanced(expr string) bool {
	if strings.Count(expr, "(") != strings.Count(expr, ")") {
		return false
	}
	return strings.Count(expr, "'")%2 == 0 && strings.Count(expr, `"`)%2 == 0
}

// =============================================================================
// DIAGNOSTICS
// =============================================================================

// Diagnostics are the validation results for a field list.
type Diagnostics struct {
	Invalid        []string
	ControlInPrint []string
	Unclosed       []string
}

// Validate classifies each curly field.
func Validate(curly []string) Diagnostics {
	var d Diagnostics
	for _, field := range curly {
		if !IsValidField(field) {
			d.Invalid = append(d.Invalid, field)
		}
		if controlKeyword.MatchString(field) {
			d.ControlInPrint = append(d.ControlInPrint, field)
		}
		trimmed := strings.TrimSpace(field)
		if strings.HasPrefix(strings.ToLower(trimmed), "note:") || trailingIf.MatchString(trimmed) {
			d.Unclosed = append(d.Unclosed, field)
		}
	}
	return d
}

// Empty reports whether no diagnostic fired.
func (d Diagnostics) Empty() bool {
	return len(d.Invalid) == 0 && len(d.ControlInPrint) == 0 && len(d.Unclosed) == 0
}

// Issue is one diagnostic category with the fields it caught.
type Issue struct {
	// Severity is "error" or "warning".
	Severity string

	// Rule names the category: invalid, control_in_print or unclosed.
	Rule string

	// Message describes the problem.
	Message string

	// Hint suggests a fix.
	Hint string

	// Fields lists the offending placeholders.
	Fields []string
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(i.Severity), i.Message, strings.Join(i.Fields, ", "))
}

// Issues returns one Issue per non-empty diagnostic list.
func (d Diagnostics) Issues() []Issue {
	var issues []Issue
	if len(d.Invalid) > 0 {
		issues = append(issues, Issue{
			Severity: "error",
			Rule:     "invalid",
			Message:  "invalid placeholder names",
			Hint:     "use letters, digits, underscores and optional dot notation; replace spaces by underscores, e.g. {{ Voornaam Klant }} -> {{ Voornaam_Klant }}",
			Fields:   d.Invalid,
		})
	}
	if len(d.ControlInPrint) > 0 {
		issues = append(issues, Issue{
			Severity: "error",
			Rule:     "control_in_print",
			Message:  "control structures inside {{ ... }}",
			Hint:     "use {% ... %} for for/if/else/endfor/endif",
			Fields:   d.ControlInPrint,
		})
	}
	if len(d.Unclosed) > 0 {
		issues = append(issues, Issue{
			Severity: "warning",
			Rule:     "unclosed",
			Message:  "possibly incomplete or stray placeholders",
			Hint:     "check that every template tag is opened and closed",
			Fields:   d.Unclosed,
		})
	}
	return issues
}

// FormatIssues renders issues for terminal output.
func FormatIssues(issues []Issue) string {
	if len(issues) == 0 {
		return "No placeholder issues."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Template check found %d issue(s):\n", len(issues)))
	for i, issue := range issues {
		builder.WriteString(fmt.Sprintf("\n%d. [%s] %s\n", i+1, strings.ToUpper(issue.Severity), issue.Message))
		for _, f := range issue.Fields {
			builder.WriteString(fmt.Sprintf("   - %s\n", f))
		}
		builder.WriteString(fmt.Sprintf("   fix: %s\n", issue.Hint))
	}
	return builder.String()
}
