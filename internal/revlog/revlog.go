// Package revlog extracts one-line commit summaries for the range a deploy
// shipped.
package revlog

import (
	"context"
	"os/exec"
	"strings"

	"github.com/deploygun/deploygun/internal/logger"
)

// Entry is one commit in the deployed range.
type Entry struct {
	ID      string
	Message string
}

// Sentinel returns the placeholder sequence reported when no log can be
// extracted.
func Sentinel() []Entry {
	return []Entry{{ID: "n/a", Message: "Log output not available."}}
}

// runner abstracts the git invocation so tests can fake it.
type runner func(ctx context.Context, dir string, args ...string) ([]byte, error)

func gitRunner(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	return cmd.Output()
}

// Source extracts the revision log for one notification run. It is not
// safe for concurrent use; a notification run is sequential.
type Source struct {
	repoPath string
	log      *logger.Logger
	run      runner

	computed bool
	entries  []Entry
}

// New creates a Source reading from the repository at repoPath.
func New(repoPath string, log *logger.Logger) *Source {
	if log == nil {
		log = logger.Nop()
	}
	return &Source{
		repoPath: repoPath,
		log:      log.WithComponent("revlog"),
		run:      gitRunner,
	}
}

// Entries returns the commits in firstRef..lastRef as (id, message) pairs.
// An empty ref, or any failure of the git invocation, yields the Sentinel
// sequence instead of an error; extraction is best-effort and never aborts
// the caller.
//
// The result of the first call is cached for the lifetime of the Source.
// Later calls return the cached entries unchanged, even when invoked with
// different refs.
func (s *Source) Entries(ctx context.Context, firstRef, lastRef string) []Entry {
	if s.computed {
		return s.entries
	}
	s.entries = s.extract(ctx, firstRef, lastRef)
	s.computed = true
	return s.entries
}

func (s *Source) extract(ctx context.Context, firstRef, lastRef string) []Entry {
	if firstRef == "" || lastRef == "" {
		return Sentinel()
	}

	revRange := firstRef + ".." + lastRef
	out, err := s.run(ctx, s.repoPath, "log", "--pretty=oneline", "--abbrev-commit", revRange)
	if err != nil {
		s.log.Debug().Err(err).Str("range", revRange).Msg("git log failed, using placeholder")
		return Sentinel()
	}

	return parse(string(out))
}

// parse splits one-line git log output into entries. Each line splits on
// its first whitespace run; whitespace inside the message is preserved.
func parse(out string) []Entry {
	var entries []Entry
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		id, msg := splitLine(line)
		entries = append(entries, Entry{ID: id, Message: msg})
	}
	return entries
}

func splitLine(line string) (id, msg string) {
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimLeft(line[i:], " \t")
}
