// Package report assembles the deploy report and renders the notification
// bodies.
package report

import (
	"time"

	"github.com/deploygun/deploygun/internal/config"
	"github.com/deploygun/deploygun/internal/revlog"
)

// Report is the template context for one deploy notification.
type Report struct {
	Application      string
	Stage            string
	DeployedBy       string
	Branch           string
	RepositoryURL    string
	PreviousRevision string
	CurrentRevision  string
	Subject          string
	Servers          []string
	Entries          []revlog.Entry
	DeployedAt       time.Time
}

// Build assembles a Report from the loaded configuration and the extracted
// revision log.
func Build(cfg *config.Config, entries []revlog.Entry, now time.Time) Report {
	return Report{
		Application:      cfg.Deploy.Application,
		Stage:            cfg.Deploy.Stage,
		DeployedBy:       cfg.Deploy.DeployedBy,
		Branch:           cfg.Deploy.Branch,
		RepositoryURL:    cfg.Deploy.RepositoryURL,
		PreviousRevision: cfg.Deploy.PreviousRevision,
		CurrentRevision:  cfg.Deploy.CurrentRevision,
		Subject:          cfg.Subject(),
		Servers:          cfg.Deploy.Servers,
		Entries:          entries,
		DeployedAt:       now,
	}
}

// bindings flattens the report into the map the template engine consumes.
// Keys are the names template authors write.
func (r Report) bindings() map[string]interface{} {
	entries := make([]map[string]interface{}, 0, len(r.Entries))
	for _, e := range r.Entries {
		entries = append(entries, map[string]interface{}{
			"id":      e.ID,
			"message": e.Message,
		})
	}

	return map[string]interface{}{
		"application":       r.Application,
		"stage":             r.Stage,
		"deployed_by":       r.DeployedBy,
		"branch":            r.Branch,
		"repository_url":    r.RepositoryURL,
		"previous_revision": r.PreviousRevision,
		"current_revision":  r.CurrentRevision,
		"subject":           r.Subject,
		"servers":           r.Servers,
		"entries":           entries,
		"deployed_at":       r.DeployedAt,
	}
}
