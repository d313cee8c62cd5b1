package lint

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
)

// WarnLints are the clippy lints whose fixes shorten code.
var WarnLints = []string{
	"needless_return",
	"needless_borrow",
	"needless_lifetimes",
	"needless_pass_by_value",
	"let_and_return",
	"redundant_else",
	"redundant_field_names",
	"redundant_pattern_matching",
	"redundant_closure",
	"redundant_closure_for_method_calls",
	"manual_map",
	"manual_filter",
	"manual_find",
	"manual_flatten",
	"manual_is_ascii_check",
	"manual_let_else",
	"manual_ok_or",
	"manual_string_new",
	"manual_unwrap_or",
	"map_unwrap_or",
	"collapsible_if",
	"collapsible_else_if",
	"single_match",
	"match_like_matches_macro",
	"unnested_or_patterns",
	"implicit_clone",
	"cloned_instead_of_copied",
	"flat_map_option",
	"iter_on_single_items",
	"option_as_ref_deref",
	"bind_instead_of_map",
	"unnecessary_wraps",
	"unnecessary_unwrap",
	"unnecessary_lazy_evaluations",
	"use_self",
	"unused_self",
	"semicolon_if_nothing_returned",
	"uninlined_format_args",
	"dbg_macro",
	"redundant_clone",
}

// SuggestArgs is the cargo invocation that reports WarnLints as JSON.
func SuggestArgs() []string {
	args := []string{"clippy", "--all-targets", "--message-format=json", "--"}
	for _, l := range WarnLints {
		args = append(args, "-W", "clippy::"+l)
	}
	return args
}

type clippyMessage struct {
	Reason  string      `json:"reason"`
	Message *diagnostic `json:"message"`
}

type diagnostic struct {
	Message string `json:"message"`
	Level   string `json:"level"`
	Code    *struct {
		Code string `json:"code"`
	} `json:"code"`
	Spans []struct {
		FileName  string `json:"file_name"`
		LineStart int    `json:"line_start"`
		IsPrimary bool   `json:"is_primary"`
	} `json:"spans"`
}

// Hint is one clippy finding.
type Hint struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Lint    string `json:"lint"`
	Message string `json:"message"`
}

// NormalizePath turns a diagnostic path into a forward-slash path without
// a leading "./".
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return p
}

// ParseHints extracts clippy warnings and errors from cargo's JSON message
// stream. Lines that are not compiler messages are ignored, as are hints in
// the build directory and repeats of the same file, line and lint.
func ParseHints(stream []byte) []Hint {
	type key struct {
		file string
		line int
		lint string
	}
	seen := make(map[key]bool)
	var hints []Hint

	sc := bufio.NewScanner(bytes.NewReader(stream))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		var msg clippyMessage
		if err := json.Unmarshal(sc.Bytes(), &msg); err != nil {
			continue
		}
		if msg.Reason != "compiler-message" || msg.Message == nil {
			continue
		}
		d := msg.Message
		if d.Level != "warning" && d.Level != "error" {
			continue
		}
		if d.Code == nil || !strings.HasPrefix(d.Code.Code, "clippy::") {
			continue
		}
		lint := strings.TrimPrefix(d.Code.Code, "clippy::")

		primary := -1
		for i, s := range d.Spans {
			if s.IsPrimary {
				primary = i
				break
			}
		}
		if primary < 0 {
			continue
		}
		span := d.Spans[primary]
		file := NormalizePath(span.FileName)
		if strings.Contains(file, "target/") {
			continue
		}

		k := key{file, span.LineStart, lint}
		if seen[k] {
			continue
		}
		seen[k] = true
		hints = append(hints, Hint{File: file, Line: span.LineStart, Lint: lint, Message: d.Message})
	}
	return hints
}
