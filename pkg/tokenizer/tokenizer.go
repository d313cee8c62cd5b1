// Package tokenizer counts BPE tokens with the o200k_base vocabulary.
//
// The vocabulary is loaded once per process on first use. Every later call
// reuses the loaded codec, so counting never blocks on I/O after the first
// call and cannot fail once loading succeeded.
package tokenizer

import (
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// Encoding is the vocabulary used for every count in a run.
const Encoding = tokenizer.O200kBase

var (
	loadOnce sync.Once
	codec    tokenizer.Codec
	loadErr  error
)

// InitError reports a failure to load the BPE vocabulary.
type InitError struct {
	Encoding string
	Err      error
}

func (e *InitError) Error() string {
	return "failed to load " + e.Encoding + " vocabulary: " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

func load() (tokenizer.Codec, error) {
	loadOnce.Do(func() {
		c, err := tokenizer.Get(Encoding)
		if err != nil {
			loadErr = &InitError{Encoding: string(Encoding), Err: err}
			return
		}
		codec = c
	})
	return codec, loadErr
}

// Init loads the vocabulary eagerly. It is safe to call repeatedly.
func Init() error {
	_, err := load()
	return err
}

// specialTokens are the o200k_base control strings. Each occurrence in the
// input is one token.
var specialTokens = []string{"<|endoftext|>", "<|endofprompt|>"}

// Count returns the number of o200k_base tokens in s. Special-token text is
// accepted as content and counts as a single token.
func Count(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	c, err := load()
	if err != nil {
		return 0, err
	}
	total := 0
	for s != "" {
		at, special := nextSpecial(s)
		if at > 0 {
			n, err := c.Count(s[:at])
			if err != nil {
				return 0, err
			}
			total += n
		}
		if special == "" {
			break
		}
		total++
		s = s[at+len(special):]
	}
	return total, nil
}

// nextSpecial returns the offset of the first special token in s and the
// token itself, or len(s) and "" when there is none.
func nextSpecial(s string) (int, string) {
	at, found := len(s), ""
	for _, tok := range specialTokens {
		if i := strings.Index(s, tok); i >= 0 && i < at {
			at, found = i, tok
		}
	}
	return at, found
}

// CountOrZero is Count for callers that treat a missing vocabulary as an
// empty count.
func CountOrZero(s string) int {
	n, err := Count(s)
	if err != nil {
		return 0
	}
	return n
}

// Counter counts tokens in a string. It is the seam used by scanners and
// caches that wrap Count.
type Counter func(s string) (int, error)
