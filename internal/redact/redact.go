// Package redact scrubs sensitive substrings from log text using an
// ordered list of pattern/replacement rules.
//
// Rules apply sequentially: each rule performs a global substitution over
// the text produced by the rules before it, so later rules can operate on
// partially redacted text. Rule order therefore matters, and two
// overlapping patterns may double-substitute. This is a documented
// limitation of the sequential design, not a bug.
package redact

import (
	"regexp"
	"sync"

	"github.com/workdeck/workdeck/internal/errors"
)

// Placeholder is the substitution text for redacted content.
const Placeholder = "[REDACTED]"

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Engine applies an ordered list of redaction rules to text. Safe for
// concurrent use: logging call sites redact while rules may be added.
type Engine struct {
	mu    sync.RWMutex
	rules []rule
}

// defaultRules covers the common shapes of leaked credentials. Rules that
// capture a key name keep it in the output so the redacted text stays
// readable and re-redacting is a fixed point.
var defaultRules = []rule{
	// Password assignments (password=..., pwd: "...")
	{regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*["']?[^"'\s;]+["']?`), "$1=" + Placeholder},
	// API keys and API secrets
	{regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?[A-Za-z0-9/+=_-]{16,}["']?`), "$1=" + Placeholder},
	// Generic secrets, tokens and credentials in assignments
	{regexp.MustCompile(`(?i)(secret|token|credential)\s*[:=]\s*["']?[^"'\s;]{6,}["']?`), "$1=" + Placeholder},
	// Bearer and basic authorization headers
	{regexp.MustCompile(`(?i)(bearer|basic)\s+[A-Za-z0-9._~+/=-]{8,}`), "$1 " + Placeholder},
	// Connection-string password fields (Password=...;)
	{regexp.MustCompile(`(?i)(password|pwd)\s*=\s*[^;\s]+`), "$1=" + Placeholder},
	// Credit-card-like digit runs (13-19 digits, optional space/dash groups)
	{regexp.MustCompile(`\b\d(?:[ -]?\d){12,18}\b`), Placeholder},
	// SSN-like digit sequences
	{regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), Placeholder},
}

// NewEngine creates an engine loaded with the default rule set.
func NewEngine() *Engine {
	rules := make([]rule, len(defaultRules))
	copy(rules, defaultRules)

	return &Engine{rules: rules}
}

// Redact applies every rule in insertion order and returns the scrubbed
// text. Each rule substitutes globally over the output of the previous one.
func (e *Engine) Redact(text string) string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result := text
	for _, r := range e.rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}

	return result
}

// ContainsSensitiveData reports whether any rule matches the text. The
// text is not modified.
func (e *Engine) ContainsSensitiveData(text string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, r := range e.rules {
		if r.pattern.MatchString(text) {
			return true
		}
	}

	return false
}

// AddPattern appends one rule to the end of the list. The rule list is
// unchanged when the pattern does not compile.
func (e *Engine) AddPattern(pattern, replacement string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return errors.ErrInvalidPattern(pattern, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.rules = append(e.rules, rule{pattern: re, replacement: replacement})

	return nil
}

// ClearPatterns removes all rules, the defaults included.
func (e *Engine) ClearPatterns() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rules = nil
}

// RuleCount returns the number of active rules.
func (e *Engine) RuleCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.rules)
}
