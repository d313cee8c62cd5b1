// Package remote resolves repository references such as owner/repo@v1.2
// and clones them so a crate can be measured without a local checkout.
package remote

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Source is a remote repository to measure.
type Source struct {
	URL      string // normalized clone URL
	Ref      string // branch or tag; empty means the default branch
	CloneDir string // set by Clone
}

// Parse reports whether path names a remote repository. It returns nil
// when path exists on disk, since local paths win, or when it does not
// look like a repository reference.
func Parse(path string) (*Source, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, nil
	}

	url, ref := splitRef(path)
	switch {
	case strings.HasPrefix(url, "https://"), strings.HasPrefix(url, "http://"):
	case strings.HasPrefix(url, "git@"):
	case strings.HasPrefix(url, "github.com/"), strings.HasPrefix(url, "gitlab.com/"):
		url = "https://" + url
	case isGitHubShorthand(url):
		url = "https://github.com/" + url
	default:
		return nil, nil
	}
	if ref == "" && strings.HasSuffix(path, "@") {
		return nil, fmt.Errorf("empty ref in %q", path)
	}
	return &Source{URL: url, Ref: ref}, nil
}

// splitRef cuts a trailing @ref. The @ of an SSH user is not a ref.
func splitRef(path string) (string, string) {
	idx := strings.LastIndex(path, "@")
	if idx == -1 || (strings.HasPrefix(path, "git@") && idx == 3) {
		return path, ""
	}
	return path[:idx], path[idx+1:]
}

// isGitHubShorthand matches owner/repo: one slash, both parts set and no
// dot in the owner.
func isGitHubShorthand(path string) bool {
	owner, repo, ok := strings.Cut(path, "/")
	if !ok || owner == "" || repo == "" {
		return false
	}
	return !strings.Contains(repo, "/") && !strings.Contains(owner, ".")
}

// Clone fetches the repository into a temp directory and sets CloneDir.
// A Ref is tried as a branch, then as a tag. Shallow fetches only the
// tip commit. Progress text goes to progress when it is non-nil.
func (s *Source) Clone(ctx context.Context, progress io.Writer, shallow bool) error {
	refs := []plumbing.ReferenceName{""}
	if s.Ref != "" {
		refs = []plumbing.ReferenceName{
			plumbing.NewBranchReferenceName(s.Ref),
			plumbing.NewTagReferenceName(s.Ref),
		}
	}

	var lastErr error
	for _, ref := range refs {
		dir, err := os.MkdirTemp("", "cargo-syntax-clone-*")
		if err != nil {
			return err
		}
		opts := &git.CloneOptions{
			URL:           s.URL,
			ReferenceName: ref,
			SingleBranch:  ref != "",
			Progress:      progress,
		}
		if shallow {
			opts.Depth = 1
		}
		if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
			_ = os.RemoveAll(dir)
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		s.CloneDir = dir
		return nil
	}
	if s.Ref != "" {
		return fmt.Errorf("cloning %s at %s: %w", s.URL, s.Ref, lastErr)
	}
	return fmt.Errorf("cloning %s: %w", s.URL, lastErr)
}

// Cleanup removes the clone.
func (s *Source) Cleanup() error {
	if s.CloneDir == "" {
		return nil
	}
	err := os.RemoveAll(s.CloneDir)
	s.CloneDir = ""
	return err
}
