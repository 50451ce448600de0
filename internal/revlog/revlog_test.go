package revlog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records invocations and plays back canned output.
type fakeRunner struct {
	calls int
	dir   string
	args  []string
	out   string
	err   error
}

func (f *fakeRunner) run(_ context.Context, dir string, args ...string) ([]byte, error) {
	f.calls++
	f.dir = dir
	f.args = args
	return []byte(f.out), f.err
}

func newTestSource(f *fakeRunner) *Source {
	s := New("/srv/app", nil)
	s.run = f.run
	return s
}

func TestEntriesParsesOnelineOutput(t *testing.T) {
	f := &fakeRunner{out: "abc1234 Fix checkout crash\ndef5678\tBump deps\nfedc321 Add   spaced   message\n"}
	s := newTestSource(f)

	entries := s.Entries(context.Background(), "v1.2.0", "HEAD")

	require.Len(t, entries, 3)
	assert.Equal(t, Entry{ID: "abc1234", Message: "Fix checkout crash"}, entries[0])
	assert.Equal(t, Entry{ID: "def5678", Message: "Bump deps"}, entries[1])
	assert.Equal(t, Entry{ID: "fedc321", Message: "Add   spaced   message"}, entries[2])

	assert.Equal(t, "/srv/app", f.dir)
	assert.Equal(t, []string{"log", "--pretty=oneline", "--abbrev-commit", "v1.2.0..HEAD"}, f.args)
}

func TestEntriesMissingRef(t *testing.T) {
	f := &fakeRunner{out: "abc1234 never seen\n"}
	s := newTestSource(f)

	assert.Equal(t, Sentinel(), s.Entries(context.Background(), "", "HEAD"))
	assert.Equal(t, 0, f.calls, "missing ref must not invoke git")
}

func TestEntriesGitFailure(t *testing.T) {
	f := &fakeRunner{err: errors.New("exit status 128")}
	s := newTestSource(f)

	assert.Equal(t, Sentinel(), s.Entries(context.Background(), "bad", "refs"))
}

func TestEntriesEmptyRange(t *testing.T) {
	f := &fakeRunner{out: ""}
	s := newTestSource(f)

	assert.Empty(t, s.Entries(context.Background(), "HEAD", "HEAD"))
}

func TestEntriesMemoizedAcrossArguments(t *testing.T) {
	f := &fakeRunner{out: "abc1234 First range\n"}
	s := newTestSource(f)

	first := s.Entries(context.Background(), "v1.0.0", "v1.1.0")

	// Different arguments, same cached result; git runs once.
	f.out = "zzz9999 Second range\n"
	second := s.Entries(context.Background(), "v1.1.0", "HEAD")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.calls)
}

func TestEntriesMemoizesSentinel(t *testing.T) {
	f := &fakeRunner{out: "abc1234 would succeed\n"}
	s := newTestSource(f)

	require.Equal(t, Sentinel(), s.Entries(context.Background(), "", ""))

	// Valid refs afterwards still return the cached placeholder.
	assert.Equal(t, Sentinel(), s.Entries(context.Background(), "v1.0.0", "HEAD"))
	assert.Equal(t, 0, f.calls)
}

func TestEntriesCommitWithoutMessage(t *testing.T) {
	f := &fakeRunner{out: "abc1234\n"}
	s := newTestSource(f)

	entries := s.Entries(context.Background(), "a", "b")
	require.Len(t, entries, 1)
	assert.Equal(t, Entry{ID: "abc1234", Message: ""}, entries[0])
}

func TestSentinelValue(t *testing.T) {
	s := Sentinel()
	require.Len(t, s, 1)
	assert.Equal(t, "n/a", s[0].ID)
	assert.Equal(t, "Log output not available.", s[0].Message)
}
