// Package profile defines review tone profiles that modulate the LLM prompt
// used by the optional feedback command. Each profile provides a
// SystemPromptAddendum that is appended to the system prompt.
package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Profile describes how feedback should be phrased for the student.
type Profile struct {
	Name                 string
	Description          string
	SystemPromptAddendum string
	// IncludeFixes, when true, allows the reviewer to show corrected code
	// snippets instead of only pointing at the problem.
	IncludeFixes bool
}

// builtins is the registry of built-in profiles keyed by name.
var builtins = map[string]Profile{
	"gentle": {
		Name:        "gentle",
		Description: "Encouraging feedback for first-time programmers.",
		SystemPromptAddendum: "The student is a beginner. Start with one thing they did well. " +
			"Explain each violation in plain language with a short hint, and never " +
			"more than three sentences per violation.",
		IncludeFixes: true,
	},
	"standard": {
		Name:        "standard",
		Description: "Default profile; neutral teaching-assistant feedback.",
		SystemPromptAddendum: "Explain why each listed violation matters for readability or " +
			"correctness and give a concrete hint. Group violations that share a cause.",
		IncludeFixes: true,
	},
	"strict": {
		Name:        "strict",
		Description: "Grading profile; points at problems without giving answers.",
		SystemPromptAddendum: "You are assisting with grading. Point at each violation and name " +
			"the rule it breaks. Do not provide corrected code. Mention assignment " +
			"requirements first because they decide pass or fail.",
		IncludeFixes: false,
	},
}

// Names returns the built-in profile names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Load returns the named built-in profile or an error if the name is unknown.
func Load(name string) (Profile, error) {
	p, ok := builtins[name]
	if !ok {
		if s := Suggest(name); s != "" {
			return Profile{}, fmt.Errorf("profile: unknown profile %q, did you mean %q?", name, s)
		}
		return Profile{}, fmt.Errorf("profile: unknown profile %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Suggest returns the best fuzzy match for name among the built-in profile
// names, or "" when nothing matches.
func Suggest(name string) string {
	if name == "" {
		return ""
	}
	matches := fuzzy.Find(name, Names())
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}
