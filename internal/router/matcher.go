// Package router resolves request paths to page handlers.
//
// A Dispatcher owns an ordered, immutable route table built once at startup.
// Routes are matched either by exact path or by an anchored regular
// expression whose capture groups are handed to the handler. The first
// matching route wins; a path nothing matches goes to the not-found handler,
// which is an ordinary successful outcome rather than an error.
package router

import (
	"fmt"
	"regexp"
	"strings"
)

// Matcher decides whether a normalized path selects a route. On a match it
// returns the captured parameters, which may be empty.
type Matcher interface {
	Match(path string) ([]string, bool)
	String() string
}

type exactMatcher string

// Exact matches a single path. The path is normalized the same way dispatched
// paths are, so "/about/" and "/about" register the same route.
func Exact(path string) Matcher {
	return exactMatcher(Normalize(path))
}

func (m exactMatcher) Match(path string) ([]string, bool) {
	if string(m) != path {
		return nil, false
	}
	return nil, true
}

func (m exactMatcher) String() string {
	return string(m)
}

type patternMatcher struct {
	re *regexp.Regexp
}

// Pattern matches paths against a regular expression that must cover the
// whole path. Anchors are added when missing.
func Pattern(expr string) (Matcher, error) {
	if !strings.HasPrefix(expr, "^") {
		expr = "^" + expr
	}
	if !strings.HasSuffix(expr, "$") {
		expr += "$"
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile route pattern %q: %w", expr, err)
	}
	return patternMatcher{re: re}, nil
}

// MustPattern is Pattern for route tables declared at startup.
func MustPattern(expr string) Matcher {
	m, err := Pattern(expr)
	if err != nil {
		panic(err)
	}
	return m
}

func (m patternMatcher) Match(path string) ([]string, bool) {
	sub := m.re.FindStringSubmatch(path)
	if sub == nil {
		return nil, false
	}
	return sub[1:], true
}

func (m patternMatcher) String() string {
	return m.re.String()
}

// Normalize strips a single trailing slash. The root path stays "/" and an
// empty path becomes "/".
func Normalize(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		return path[:len(path)-1]
	}
	return path
}
