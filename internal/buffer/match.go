package buffer

// Match describes a successful expect.
type Match struct {
	// Text is the matched text.
	Text string

	// Start and End are byte offsets of the match in the buffer as it was
	// when the match was found.
	Start int
	End   int

	// Groups holds the text of each capture group, with Groups[0] equal to
	// Text. Groups that did not participate are empty.
	Groups []string

	// Indices holds start/end pairs for each group in the same layout as
	// regexp.FindStringSubmatchIndex. Non-participating groups are -1.
	Indices []int

	// Case is the index of the case that fired in a map expect, or -1.
	Case int
}

// Group returns the text of capture group i, or "" when i is out of range.
func (m *Match) Group(i int) string {
	if m == nil || i < 0 || i >= len(m.Groups) {
		return ""
	}

	return m.Groups[i]
}
