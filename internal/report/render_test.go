package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploygun/deploygun/internal/config"
	"github.com/deploygun/deploygun/internal/revlog"
)

func testReport() Report {
	return Report{
		Application:      "storefront",
		Stage:            "production",
		DeployedBy:       "casey",
		Branch:           "main",
		RepositoryURL:    "https://github.com/acme/storefront",
		PreviousRevision: "9f8e7d6c5b4a39281706f5e4d3c2b1a098765432",
		CurrentRevision:  "0123456789abcdef0123456789abcdef01234567",
		Subject:          "Deployed storefront to production",
		Servers:          []string{"web1.example.com", "web2.example.com"},
		Entries: []revlog.Entry{
			{ID: "abc1234", Message: "Fix checkout crash"},
			{ID: "def5678", Message: "Bump deps"},
		},
		DeployedAt: time.Date(2026, 8, 25, 14, 30, 0, 0, time.UTC),
	}
}

func TestBuild(t *testing.T) {
	cfg := &config.Config{}
	cfg.Deploy.Application = "storefront"
	cfg.Deploy.Stage = "production"
	cfg.Deploy.DeployedBy = "casey"
	cfg.Deploy.Servers = []string{"web1"}

	now := time.Date(2026, 8, 25, 14, 30, 0, 0, time.UTC)
	entries := []revlog.Entry{{ID: "abc1234", Message: "Fix checkout crash"}}

	rep := Build(cfg, entries, now)

	assert.Equal(t, "storefront", rep.Application)
	assert.Equal(t, "production", rep.Stage)
	assert.Equal(t, "Deployed storefront to production", rep.Subject)
	assert.Equal(t, entries, rep.Entries)
	assert.Equal(t, now, rep.DeployedAt)
	assert.Equal(t, []string{"web1"}, rep.Servers)
}

func TestTextRendersBundledTemplate(t *testing.T) {
	out, err := NewRenderer().Text(testReport(), "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Deployed storefront to production\n"))
	assert.Contains(t, out, "Application: storefront")
	assert.Contains(t, out, "Stage:       production")
	assert.Contains(t, out, "Branch:      main")
	assert.Contains(t, out, "9f8e7d6 -> 0123456")
	assert.Contains(t, out, "Deployed by: casey")
	assert.Contains(t, out, "2026-08-25 14:30")
	assert.Contains(t, out, "- web1.example.com")
	assert.Contains(t, out, "abc1234 Fix checkout crash")
	assert.Contains(t, out, "def5678 Bump deps")
}

func TestTextRendersSentinelEntries(t *testing.T) {
	rep := testReport()
	rep.Entries = revlog.Sentinel()

	out, err := NewRenderer().Text(rep, "")
	require.NoError(t, err)

	assert.Contains(t, out, "n/a Log output not available.")
}

func TestTextOmitsEmptySections(t *testing.T) {
	rep := Report{
		Application: "storefront",
		Subject:     "Deployed storefront",
		DeployedAt:  time.Date(2026, 8, 25, 14, 30, 0, 0, time.UTC),
	}

	out, err := NewRenderer().Text(rep, "")
	require.NoError(t, err)

	assert.NotContains(t, out, "Stage:")
	assert.NotContains(t, out, "Branch:")
	assert.NotContains(t, out, "Revisions:")
	assert.NotContains(t, out, "Servers:")
}

func TestHTMLRendersCommitLinks(t *testing.T) {
	out, err := NewRenderer().HTML(testReport(), "")
	require.NoError(t, err)

	assert.Contains(t, out, `<a href="https://github.com/acme/storefront/commit/abc1234">abc1234</a>`)
	assert.Contains(t, out, "Fix checkout crash")
}

func TestHTMLLeavesSentinelUnlinked(t *testing.T) {
	rep := testReport()
	rep.Entries = revlog.Sentinel()

	out, err := NewRenderer().HTML(rep, "")
	require.NoError(t, err)

	assert.NotContains(t, out, `href="https://github.com/acme/storefront/commit/n/a"`)
	assert.Contains(t, out, "Log output not available.")
}

func TestHTMLEscapesCommitMessages(t *testing.T) {
	rep := testReport()
	rep.Entries = []revlog.Entry{{ID: "abc1234", Message: `Fix <script>alert("x")</script>`}}

	out, err := NewRenderer().HTML(rep, "")
	require.NoError(t, err)

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestRenderOverridePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "body.liquid")
	require.NoError(t, os.WriteFile(path, []byte("APP={{ application }}"), 0644))

	out, err := NewRenderer().Text(testReport(), path)
	require.NoError(t, err)
	assert.Equal(t, "APP=storefront", out)
}

func TestRenderOverrideMissing(t *testing.T) {
	_, err := NewRenderer().Text(testReport(), filepath.Join(t.TempDir(), "nope.liquid"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.liquid")
}

func TestRenderBadTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.liquid")
	require.NoError(t, os.WriteFile(path, []byte("{% for %}"), 0644))

	_, err := NewRenderer().Text(testReport(), path)
	assert.Error(t, err)
}

func TestCommitURLTrimsTrailingSlash(t *testing.T) {
	rep := testReport()
	rep.RepositoryURL = "https://github.com/acme/storefront/"

	out, err := NewRenderer().HTML(rep, "")
	require.NoError(t, err)
	assert.Contains(t, out, `https://github.com/acme/storefront/commit/abc1234`)
	assert.NotContains(t, out, `storefront//commit`)
}
