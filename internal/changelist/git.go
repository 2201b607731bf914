// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package changelist

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"
)

// GitMode selects how GitSource computes the change list.
type GitMode int

const (
	// GitModeWorking diffs the working tree against HEAD (uncommitted
	// changes, the default).
	GitModeWorking GitMode = iota

	// GitModeStaged diffs the index against HEAD (git diff --cached).
	GitModeStaged

	// GitModeCommit diffs a single commit against its parent.
	GitModeCommit

	// GitModeBranch diffs the working tree against a branch's merge
	// base.
	GitModeBranch
)

// GitSource computes a change List from a git repository, mirroring
// the change-detection modes of this codebase's own git-diff-based
// impact analyzer.
type GitSource struct {
	RepoRoot string
	Mode     GitMode
	Commit   string // GitModeCommit
	Branch   string // GitModeBranch
	runner   func(ctx context.Context, args ...string) ([]byte, error)
}

// NewGitSource builds a GitSource rooted at repoRoot.
func NewGitSource(repoRoot string, mode GitMode) *GitSource {
	g := &GitSource{RepoRoot: repoRoot, Mode: mode}
	g.runner = func(ctx context.Context, args ...string) ([]byte, error) {
		return runGit(ctx, append([]string{"-C", g.RepoRoot}, args...)...)
	}
	return g
}

func runGit(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// Resolve runs the configured git diff and turns its name-status output
// into a List.
func (g *GitSource) Resolve(ctx context.Context) (List, error) {
	args, err := g.diffArgs()
	if err != nil {
		return List{}, err
	}

	out, err := g.runner(ctx, args...)
	if err != nil {
		return List{}, err
	}

	return parseNameStatus(out), nil
}

func (g *GitSource) diffArgs() ([]string, error) {
	switch g.Mode {
	case GitModeWorking:
		return []string{"diff", "--name-status", "HEAD"}, nil
	case GitModeStaged:
		return []string{"diff", "--name-status", "--cached"}, nil
	case GitModeCommit:
		if g.Commit == "" {
			return nil, fmt.Errorf("changelist: GitModeCommit requires Commit")
		}
		return []string{"diff", "--name-status", g.Commit + "^", g.Commit}, nil
	case GitModeBranch:
		if g.Branch == "" {
			return nil, fmt.Errorf("changelist: GitModeBranch requires Branch")
		}
		mergeBase, err := g.runner(context.Background(), "merge-base", "HEAD", g.Branch)
		if err != nil {
			return nil, err
		}
		return []string{"diff", "--name-status", strings.TrimSpace(string(mergeBase))}, nil
	default:
		return nil, fmt.Errorf("changelist: unknown git mode %d", g.Mode)
	}
}

// parseNameStatus turns `git diff --name-status` output into a List.
// Status codes: A (added), M (modified), D (deleted), R### (renamed,
// treated as delete-old + create-new), C### (copied, treated as
// create).
func parseNameStatus(output []byte) List {
	var l List
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}

		status := fields[0]
		switch {
		case strings.HasPrefix(status, "A"), strings.HasPrefix(status, "C"):
			l.Created = append(l.Created, fields[len(fields)-1])
		case strings.HasPrefix(status, "M"):
			l.Updated = append(l.Updated, fields[1])
		case strings.HasPrefix(status, "D"):
			l.Deleted = append(l.Deleted, fields[1])
		case strings.HasPrefix(status, "R"):
			if len(fields) >= 3 {
				l.Deleted = append(l.Deleted, fields[1])
				l.Created = append(l.Created, fields[2])
			}
		}
	}
	return l
}

// ParseUnifiedDiff turns a stored unified-diff document (e.g. the
// output of `git diff` saved to a file, or a patch attached to a CI
// job) into a List, using go-diff instead of hand-rolling a parser.
// A file whose old side is /dev/null (or empty) is reported as Created,
// one whose new side is /dev/null (or empty) as Deleted, and every other
// file as Updated.
func ParseUnifiedDiff(patch []byte) (List, error) {
	fileDiffs, err := godiff.ParseMultiFileDiff(patch)
	if err != nil {
		return List{}, fmt.Errorf("changelist: parsing unified diff: %w", err)
	}

	var l List
	for _, fd := range fileDiffs {
		path := strings.TrimPrefix(fd.NewName, "b/")
		oldPath := strings.TrimPrefix(fd.OrigName, "a/")

		switch {
		case oldPath == "/dev/null" || oldPath == "":
			l.Created = append(l.Created, path)
		case path == "/dev/null" || path == "":
			l.Deleted = append(l.Deleted, oldPath)
		default:
			l.Updated = append(l.Updated, path)
		}
	}
	return l, nil
}
