package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// compiledPattern is a single named file name regex.
type compiledPattern struct {
	name string
	re   *regexp.Regexp
}

// patternMatcher holds the compiled file name patterns of a family.
type patternMatcher struct {
	patterns []compiledPattern
}

// compilePatterns builds a patternMatcher from a family's regexes. Patterns
// are named after their family and position for error messages.
func compilePatterns(family string, exprs []string) (*patternMatcher, error) {
	pm := &patternMatcher{patterns: make([]compiledPattern, 0, len(exprs))}
	for i, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("family %s pattern %d: %w", family, i, err)
		}
		pm.patterns = append(pm.patterns, compiledPattern{name: fmt.Sprintf("%s#%d", family, i), re: re})
	}
	return pm, nil
}

// match tests a file name, lower-cased, against all patterns and returns the
// first matching pattern name.
func (pm *patternMatcher) match(name string) (string, bool) {
	if pm == nil {
		return "", false
	}
	cleaned := strings.ToLower(strings.TrimSpace(name))
	for _, p := range pm.patterns {
		if p.re.MatchString(cleaned) {
			return p.name, true
		}
	}
	return "", false
}
