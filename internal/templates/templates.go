// Package templates writes the token-efficient crate configuration used by
// the init and apply commands.
package templates

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml"
)

//go:embed files/*
var files embed.FS

func mustRead(name string) string {
	data, err := files.ReadFile("files/" + name)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// Template contents.
var (
	CargoLints    = mustRead("cargo_lints.toml")
	RustfmtTOML   = mustRead("rustfmt.toml")
	ClippyTOML    = mustRead("clippy.toml")
	ToolchainTOML = mustRead("rust-toolchain.toml")
	Gitignore     = mustRead("gitignore")
	ClaudeMD      = mustRead("CLAUDE.md")
)

type file struct {
	name    string
	content string
}

// configFiles are written next to Cargo.toml, in this order.
var configFiles = []file{
	{"rustfmt.toml", RustfmtTOML},
	{"clippy.toml", ClippyTOML},
	{"rust-toolchain.toml", ToolchainTOML},
	{"CLAUDE.md", ClaudeMD},
}

// gitignoreMarker is the entry whose presence means .gitignore already
// covers build output.
const gitignoreMarker = "**/target"

// ErrNoManifest is returned when dir has no Cargo.toml.
var ErrNoManifest = errors.New("no Cargo.toml found - run this from a Rust project root")

// Status says what happened to one file.
type Status string

const (
	Created Status = "created"
	Updated Status = "updated"
	Skipped Status = "skipped"
)

// Action records the outcome for one file.
type Action struct {
	File   string `json:"file"`
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// String renders the action as the line printed by the CLI.
func (a Action) String() string {
	switch a.Status {
	case Created:
		return "Created " + a.File
	case Updated:
		if a.Reason != "" {
			return a.Reason
		}
		return "Updated " + a.File
	default:
		return a.Reason
	}
}

// HasClippyLints reports whether a Cargo.toml already configures clippy
// lints. Manifests that do not parse fall back to a text search.
func HasClippyLints(manifest string) bool {
	tree, err := toml.Load(manifest)
	if err != nil {
		return strings.Contains(manifest, "[lints.clippy]")
	}
	return tree.Has("lints.clippy")
}

// Scaffold configures a crate freshly created by cargo init: lints are
// appended to Cargo.toml and every config file is written, replacing
// cargo's own .gitignore.
func Scaffold(dir string) ([]Action, error) {
	manifest := filepath.Join(dir, "Cargo.toml")
	content, err := os.ReadFile(manifest)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoManifest
		}
		return nil, err
	}
	if err := os.WriteFile(manifest, append(content, CargoLints...), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write Cargo.toml: %w", err)
	}
	actions := []Action{{File: "Cargo.toml", Status: Updated, Reason: "Added clippy lints to Cargo.toml"}}

	scaffold := append(slices.Clip(configFiles), file{".gitignore", Gitignore})
	for _, f := range scaffold {
		if err := os.WriteFile(filepath.Join(dir, f.name), []byte(f.content), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		actions = append(actions, Action{File: f.name, Status: Created})
	}
	return actions, nil
}

// Apply adds the configuration to an existing crate without overwriting
// anything: lints only when Cargo.toml has none, config files only when
// missing, and .gitignore entries only when build output is not ignored.
func Apply(dir string) ([]Action, error) {
	manifest := filepath.Join(dir, "Cargo.toml")
	content, err := os.ReadFile(manifest)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoManifest
		}
		return nil, err
	}

	var actions []Action
	if HasClippyLints(string(content)) {
		actions = append(actions, Action{
			File: "Cargo.toml", Status: Skipped,
			Reason: "Cargo.toml already has [lints.clippy] - skipping lints.",
		})
	} else {
		if err := os.WriteFile(manifest, append(content, CargoLints...), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write Cargo.toml: %w", err)
		}
		actions = append(actions, Action{File: "Cargo.toml", Status: Updated, Reason: "Added clippy lints to Cargo.toml"})
	}

	for _, f := range configFiles {
		a, err := writeIfMissing(dir, f.name, f.content)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}

	a, err := mergeGitignore(dir)
	if err != nil {
		return nil, err
	}
	return append(actions, a), nil
}

func writeIfMissing(dir, name, content string) (Action, error) {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return Action{File: name, Status: Skipped, Reason: name + " already exists - skipping."}, nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return Action{}, fmt.Errorf("failed to write %s: %w", name, err)
	}
	return Action{File: name, Status: Created}, nil
}

func mergeGitignore(dir string) (Action, error) {
	path := filepath.Join(dir, ".gitignore")
	existing, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(path, []byte(Gitignore), 0o644); err != nil {
			return Action{}, fmt.Errorf("failed to write .gitignore: %w", err)
		}
		return Action{File: ".gitignore", Status: Created}, nil
	}
	if err != nil {
		return Action{}, err
	}

	if strings.Contains(string(existing), gitignoreMarker) {
		return Action{File: ".gitignore", Status: Skipped, Reason: ".gitignore already covers target/ - skipping."}, nil
	}
	merged := string(existing) + "\n# Added by cargo-syntax\n" + Gitignore
	if err := os.WriteFile(path, []byte(merged), 0o644); err != nil {
		return Action{}, fmt.Errorf("failed to write .gitignore: %w", err)
	}
	return Action{File: ".gitignore", Status: Updated, Reason: "Appended to .gitignore"}, nil
}
