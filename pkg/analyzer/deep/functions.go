package deep

import (
	"strings"
	"unicode"

	"github.com/syntaxai/cargo-syntax/pkg/analyzer/project"
)

// FnInfo is a function found by ExtractFunctions. Line is 0-based.
type FnInfo struct {
	Name string `json:"name"`
	Line int    `json:"line"`
	Body string `json:"body"`
}

// ExtractFunctions finds function definitions with a line-oriented brace
// counter. It is a heuristic: `fn` inside strings or comments is not told
// apart and nothing is parsed.
func ExtractFunctions(text string) []FnInfo {
	var fns []FnInfo
	lines := project.SplitLines(text)

	for i := 0; i < len(lines); {
		name, ok := fnHeader(strings.TrimSpace(lines[i]))
		if !ok {
			i++
			continue
		}

		braceLine := i
		for braceLine < len(lines) && !strings.Contains(lines[braceLine], "{") {
			braceLine++
		}
		if braceLine == len(lines) {
			i++
			continue
		}

		// An unbalanced body ends at the brace line
		end := braceLine
		depth := 0
		for li := braceLine; li < len(lines); li++ {
			depth += strings.Count(lines[li], "{") - strings.Count(lines[li], "}")
			if depth == 0 {
				end = li
				break
			}
		}

		fns = append(fns, FnInfo{
			Name: name,
			Line: i,
			Body: strings.Join(lines[i:end+1], "\n"),
		})
		i = end + 1
	}

	return fns
}

// fnHeader returns the function name when trimmed declares one.
func fnHeader(trimmed string) (string, bool) {
	pos := strings.Index(trimmed, "fn ")
	if pos < 0 {
		return "", false
	}

	before := trimmed[:pos]
	head := strings.TrimRightFunc(before, unicode.IsSpace)
	if before != "" &&
		!strings.HasSuffix(head, "pub") &&
		!strings.Contains(before, "pub(") &&
		!strings.HasSuffix(head, "async") &&
		!strings.HasSuffix(head, "unsafe") {
		return "", false
	}

	rest := trimmed[pos+3:]
	end := strings.IndexFunc(rest, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '_'
	})
	if end < 0 {
		end = len(rest)
	}
	if end == 0 {
		return "", false
	}
	return rest[:end], true
}
