package buffer

import (
	"regexp"
	"strings"
)

// Union combines several patterns into one alternation so that a single
// expect can wait for any of them. Each pattern is wrapped in its own
// capture group; the position of that group is recorded so the matched
// case can be recovered afterwards.
type Union struct {
	re     *regexp.Regexp
	parts  []*regexp.Regexp
	whole  []*regexp.Regexp
	groups []int
}

// NewUnion validates and combines patterns in declared order.
func NewUnion(patterns []any) (*Union, error) {
	u := &Union{
		parts:  make([]*regexp.Regexp, 0, len(patterns)),
		whole:  make([]*regexp.Regexp, 0, len(patterns)),
		groups: make([]int, 0, len(patterns)),
	}

	alternatives := make([]string, 0, len(patterns))
	next := 1

	for _, pattern := range patterns {
		re, err := Compile(pattern)
		if err != nil {
			return nil, err
		}

		whole, err := regexp.Compile(`\A(?:` + re.String() + `)\z`)
		if err != nil {
			return nil, err
		}

		u.parts = append(u.parts, re)
		u.whole = append(u.whole, whole)
		u.groups = append(u.groups, next)
		alternatives = append(alternatives, "("+re.String()+")")

		next += 1 + re.NumSubexp()
	}

	re, err := regexp.Compile(strings.Join(alternatives, "|"))
	if err != nil {
		return nil, err
	}

	u.re = re

	return u, nil
}

// Regexp returns the combined expression.
func (u *Union) Regexp() *regexp.Regexp {
	return u.re
}

// Len returns the number of combined patterns.
func (u *Union) Len() int {
	return len(u.parts)
}

// Which returns the index of the case that fired for m: the first declared
// pattern that matches the whole matched text, falling back to the case
// whose group participated. It returns -1 when m is nil.
func (u *Union) Which(m *Match) int {
	if m == nil {
		return -1
	}

	for i, re := range u.whole {
		if re.MatchString(m.Text) {
			return i
		}
	}

	for i, g := range u.groups {
		if 2*g < len(m.Indices) && m.Indices[2*g] >= 0 {
			return i
		}
	}

	return -1
}

// Narrow rewrites m so that its groups are those of case i alone, with
// Groups[0] still the whole match. When case i won a tie without its own
// group participating, its groups are recomputed against the matched text.
func (u *Union) Narrow(m *Match, i int) *Match {
	if m == nil || i < 0 || i >= len(u.parts) {
		return m
	}

	out := *m
	out.Case = i

	re := u.parts[i]
	g := u.groups[i]

	loc := m.Indices[2*g : 2*(g+1+re.NumSubexp())]
	base := 0

	if loc[0] < 0 {
		loc = re.FindStringSubmatchIndex(m.Text)
		base = m.Start
	}

	if loc == nil {
		loc = []int{-1, -1}
	}

	out.Groups = []string{m.Text}
	out.Indices = []int{m.Start, m.End}

	for k := 2; k+1 < len(loc); k += 2 {
		if loc[k] < 0 {
			out.Groups = append(out.Groups, "")
			out.Indices = append(out.Indices, -1, -1)

			continue
		}

		start, end := loc[k]+base, loc[k+1]+base
		out.Groups = append(out.Groups, m.Text[start-m.Start:end-m.Start])
		out.Indices = append(out.Indices, start, end)
	}

	return &out
}
