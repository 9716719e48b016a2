package lineedit

// History is the editor's recall list.
type History interface {
	Add(line string)
	Len() int
	At(i int) string // 0 is the oldest entry
}

// BasicHistory is an append-only in-memory history. Duplicates are kept
// and insertion order is preserved.
type BasicHistory struct {
	lines []string
}

// Add appends line.
func (h *BasicHistory) Add(line string) {
	h.lines = append(h.lines, line)
}

// Len returns the number of entries.
func (h *BasicHistory) Len() int {
	return len(h.lines)
}

// At returns entry i.
func (h *BasicHistory) At(i int) string {
	return h.lines[i]
}

// Lines returns a copy of all entries, oldest first.
func (h *BasicHistory) Lines() []string {
	return append([]string(nil), h.lines...)
}
