package project

import "strings"

// SplitLines splits text on '\n', strips one trailing '\r' from each line
// and drops the empty piece after a final newline. "" has no lines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// CountLines returns len(SplitLines(text)) without allocating.
func CountLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}

// LineCounts splits a file's lines into classes.
type LineCounts struct {
	Code    int `json:"code"`
	Comment int `json:"comment"`
	Blank   int `json:"blank"`
}

// Total returns the number of classified lines.
func (c LineCounts) Total() int {
	return c.Code + c.Comment + c.Blank
}

// ClassifyLines counts code, comment and blank lines in one pass.
// String literals containing comment markers are not recognised.
func ClassifyLines(text string) LineCounts {
	var counts LineCounts
	inBlock := false

	for _, line := range SplitLines(text) {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			counts.Blank++
		case inBlock:
			counts.Comment++
			if strings.Contains(trimmed, "*/") {
				inBlock = false
			}
		case strings.HasPrefix(trimmed, "//"):
			counts.Comment++
		case strings.HasPrefix(trimmed, "/*"):
			counts.Comment++
			if !strings.Contains(trimmed, "*/") {
				inBlock = true
			}
		default:
			counts.Code++
		}
	}

	return counts
}
