// Package domain contains the mutation-execution engine: registry,
// applier, scheduler, backends, and aggregation.
package domain

import (
	"regexp"
	"strings"

	m "github.com/fission-dev/fission/internal/model"
)

// Template placeholders. {output} is mandatory so concurrent mutants never
// collide on a shared result file; {dir} expands to the mutant's private
// working directory.
const (
	PlaceholderOutput = "output"
	PlaceholderDir    = "dir"
)

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// CommandTemplate is a validated test-command template with named
// placeholders. Validation happens at parse time, before any work item is
// dispatched, so a malformed template fails the whole run fast.
type CommandTemplate struct {
	fields []string
}

// ParseCommandTemplate splits and validates a template string. The
// template must reference {output} and may reference {dir}; any other
// placeholder is a configuration error.
func ParseCommandTemplate(raw string) (CommandTemplate, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return CommandTemplate{}, m.NewConfigError("test command is empty")
	}

	seen := map[string]bool{}

	for _, field := range fields {
		for _, match := range placeholderPattern.FindAllStringSubmatch(field, -1) {
			name := match[1]
			if name != PlaceholderOutput && name != PlaceholderDir {
				return CommandTemplate{}, m.NewConfigError("unknown placeholder {%s} in test command", name)
			}

			seen[name] = true
		}
	}

	if !seen[PlaceholderOutput] {
		return CommandTemplate{}, m.NewConfigError("test command must reference the {output} placeholder")
	}

	return CommandTemplate{fields: fields}, nil
}

// Render substitutes placeholder values and returns the argv to execute.
func (t CommandTemplate) Render(vars map[string]string) []string {
	argv := make([]string, len(t.fields))

	for i, field := range t.fields {
		argv[i] = placeholderPattern.ReplaceAllStringFunc(field, func(match string) string {
			name := strings.Trim(match, "{}")
			if value, ok := vars[name]; ok {
				return value
			}

			return match
		})
	}

	return argv
}
