// Package channels resolves configured channel names and glob patterns
// against the workspace channel directory.
package channels

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/chrisedwards/slack-history/internal/slack"
)

// Target is a channel selected for history retrieval.
type Target struct {
	Name string
	ID   string
}

// LookupError is returned when an explicitly named channel is not in the
// directory (it does not exist, is archived, or is private).
type LookupError struct {
	Name string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("channel %q not found among non-archived public channels", e.Name)
}

// ErrNoTargets is returned when the include/exclude patterns leave nothing to fetch.
var ErrNoTargets = errors.New("no channels selected")

// Filter applies include/exclude patterns to the channel directory.
type Filter struct {
	include []string
	exclude []string
}

// NewFilter creates a Filter with the given include and exclude patterns.
func NewFilter(include, exclude []string) *Filter {
	return &Filter{
		include: include,
		exclude: exclude,
	}
}

// Resolve returns the targets selected by the filter, in include order.
// Plain names must exist in dir exactly; glob patterns add every matching
// channel sorted by name. Channels matching an exclude pattern are dropped.
func (f *Filter) Resolve(dir slack.ChannelDirectory) ([]Target, error) {
	var targets []Target
	seen := make(map[string]bool)
	add := func(name string) {
		if seen[name] || MatchAny(f.exclude, name) {
			return
		}
		seen[name] = true
		targets = append(targets, Target{Name: name, ID: dir[name]})
	}

	for _, entry := range f.include {
		if !IsPattern(entry) {
			if _, ok := dir[entry]; !ok {
				return nil, &LookupError{Name: entry}
			}
			add(entry)
			continue
		}

		var matched []string
		for name := range dir {
			if MatchPattern(entry, name) {
				matched = append(matched, name)
			}
		}
		sort.Strings(matched)
		for _, name := range matched {
			add(name)
		}
	}

	if len(targets) == 0 {
		return nil, ErrNoTargets
	}
	return targets, nil
}

// IsPattern reports whether s contains glob metacharacters.
func IsPattern(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

// MatchAny checks if a value matches any pattern in a list.
// Returns false for an empty pattern list.
func MatchAny(patterns []string, value string) bool {
	for _, pattern := range patterns {
		if MatchPattern(pattern, value) {
			return true
		}
	}
	return false
}

// MatchPattern matches a value against a glob pattern
// (* matches any sequence, ? a single character). Matching falls back to
// case-insensitive; invalid patterns never match.
func MatchPattern(pattern, value string) bool {
	matched, err := filepath.Match(pattern, value)
	if err != nil {
		return false
	}
	if matched {
		return true
	}
	matched, _ = filepath.Match(strings.ToLower(pattern), strings.ToLower(value))
	return matched
}
