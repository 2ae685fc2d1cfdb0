// Package extract pulls PCB identifier tokens out of decoded log text.
package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// Extractor applies a primary pattern and, when it yields nothing, a looser
// fallback. The first capture group of each pattern is the digit run that
// becomes the identifier token.
type Extractor struct {
	primary  *regexp.Regexp
	fallback *regexp.Regexp
}

// New compiles the pattern pair. Both patterns must contain at least one
// capture group.
func New(primaryPattern, fallbackPattern string) (*Extractor, error) {
	primary, err := regexp.Compile(primaryPattern)
	if err != nil {
		return nil, fmt.Errorf("compile primary pattern: %w", err)
	}
	fallback, err := regexp.Compile(fallbackPattern)
	if err != nil {
		return nil, fmt.Errorf("compile fallback pattern: %w", err)
	}
	if primary.NumSubexp() < 1 {
		return nil, fmt.Errorf("primary pattern %q has no capture group", primaryPattern)
	}
	if fallback.NumSubexp() < 1 {
		return nil, fmt.Errorf("fallback pattern %q has no capture group", fallbackPattern)
	}
	return &Extractor{primary: primary, fallback: fallback}, nil
}

// Identifiers returns every captured token in document order, duplicates
// included; deduplication belongs to the identifier set. usedFallback
// reports that the primary pattern found nothing and the fallback ran.
func (e *Extractor) Identifiers(text string) (ids []string, usedFallback bool) {
	ids = capture(e.primary, text)
	if len(ids) > 0 {
		return ids, false
	}
	return capture(e.fallback, text), true
}

func capture(re *regexp.Regexp, text string) []string {
	matches := re.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	ids := make([]string, 0, len(matches))
	for _, match := range matches {
		if len(match) > 1 && match[1] != "" {
			ids = append(ids, match[1])
		}
	}
	return ids
}

// Lines returns every line of text containing "pcb" regardless of case,
// trimmed. Used for the diagnostic side-channel when extraction misses.
func Lines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(strings.ToLower(line), "pcb") {
			out = append(out, strings.TrimSpace(line))
		}
	}
	return out
}
