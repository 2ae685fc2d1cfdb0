// Package identset owns the durable deduplicated set of PCB identifiers.
//
// The on-disk form is a newline-delimited list of decimal-digit strings
// sorted ascending by numeric value. Loads are tolerant: non-numeric lines
// are filtered out and a missing file simply yields an empty set, so a
// corrupt or absent store never blocks processing.
package identset

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
)

// Set is the collection of distinct identifier tokens ever observed.
type Set map[string]struct{}

// New returns an empty identifier set.
func New() Set {
	return make(Set)
}

// Add inserts token and reports whether it was previously unseen.
func (s Set) Add(token string) bool {
	if _, ok := s[token]; ok {
		return false
	}
	s[token] = struct{}{}
	return true
}

// AddAll inserts every token and returns the number of new members.
func (s Set) AddAll(tokens []string) int {
	added := 0
	for _, token := range tokens {
		if s.Add(token) {
			added++
		}
	}
	return added
}

// Has reports membership.
func (s Set) Has(token string) bool {
	_, ok := s[token]
	return ok
}

// Len returns the set cardinality.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the members ascending by numeric value, so "2" sorts
// before "10". Equal values with different zero padding keep a stable
// lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for token := range s {
		out = append(out, token)
	}
	slices.SortFunc(out, compareNumeric)
	return out
}

func compareNumeric(a, b string) int {
	ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
	if len(ta) != len(tb) {
		return len(ta) - len(tb)
	}
	if c := strings.Compare(ta, tb); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// Load reads the store at path. Non-numeric lines are dropped. A missing
// file yields an empty set with no error; any other failure also yields a
// usable empty set, with the error returned for logging only.
func Load(path string) (Set, error) {
	set := New()

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return set, nil
		}
		return set, fmt.Errorf("open identifier store: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !isDigits(line) {
			continue
		}
		set.Add(line)
	}
	if err := scanner.Err(); err != nil {
		return set, fmt.Errorf("read identifier store: %w", err)
	}
	return set, nil
}

// Save rewrites the store at path with one identifier per line in numeric
// ascending order.
func Save(set Set, path string) error {
	var builder strings.Builder
	for _, token := range set.Sorted() {
		builder.WriteString(token)
		builder.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(builder.String()), 0o644); err != nil {
		return fmt.Errorf("write identifier store: %w", err)
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
