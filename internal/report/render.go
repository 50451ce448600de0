package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/osteele/liquid"
)

// Renderer renders notification bodies with the Liquid template language.
// Template overrides come from disk; the defaults ship with the binary.
type Renderer struct {
	engine *liquid.Engine
}

// NewRenderer creates a Renderer with the deploy-specific filters
// registered.
func NewRenderer() *Renderer {
	engine := liquid.NewEngine()

	// Abbreviate a revision id: {{ current_revision | short_ref }}
	engine.RegisterFilter("short_ref", func(ref string) string {
		if len(ref) > 7 {
			return ref[:7]
		}
		return ref
	})

	// Build a commit link: {{ entry.id | commit_url: repository_url }}
	engine.RegisterFilter("commit_url", func(ref, repoURL string) string {
		if repoURL == "" {
			return ref
		}
		return strings.TrimSuffix(repoURL, "/") + "/commit/" + ref
	})

	return &Renderer{engine: engine}
}

// Text renders the plain-text body. An empty overridePath uses the bundled
// template.
func (r *Renderer) Text(rep Report, overridePath string) (string, error) {
	return r.render(rep, overridePath, textTemplate)
}

// HTML renders the HTML body. An empty overridePath uses the bundled
// template.
func (r *Renderer) HTML(rep Report, overridePath string) (string, error) {
	return r.render(rep, overridePath, htmlTemplate)
}

func (r *Renderer) render(rep Report, overridePath, bundled string) (string, error) {
	src := bundled
	name := "bundled"
	if overridePath != "" {
		b, err := os.ReadFile(overridePath)
		if err != nil {
			return "", fmt.Errorf("failed to read template %s: %w", overridePath, err)
		}
		src = string(b)
		name = overridePath
	}

	out, err := r.engine.ParseAndRenderString(src, rep.bindings())
	if err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return out, nil
}
