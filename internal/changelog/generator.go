// Package changelog renders release history as markdown.
package changelog

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"text/template"
	"time"

	apperrors "chronicle/pkg/errors"
	"chronicle/pkg/models"
)

// defaultTemplate renders the conventional changelog layout.
const defaultTemplate = `# Changelog
{{ range .Releases }}
## {{ .Title }}{{ if .Date }} - {{ .Date }}{{ end }}
{{ range .Groups }}
### {{ .Name }}

{{ range .Commits }}- {{ .Short }} {{ .Subject }}
{{ end }}{{ end }}{{ if .Contributors }}
### Contributors

{{ range .Contributors }}- @{{ .Name }}{{ if .FirstTime }} (first contribution){{ end }}
{{ end }}{{ end }}{{ end }}`

// Generator renders releases through a template.
type Generator struct {
	template *template.Template
}

// New creates a generator with the default template.
func New() *Generator {
	return &Generator{template: template.Must(template.New("changelog").Parse(defaultTemplate))}
}

// NewFromFile creates a generator with a custom template file.
func NewFromFile(path string) (*Generator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFileOperation, "failed to read changelog template")
	}
	parsed, err := template.New("changelog").Parse(string(data))
	if err != nil {
		return nil, apperrors.ConfigError("invalid changelog template: "+err.Error(), "changelog.template")
	}
	return &Generator{template: parsed}, nil
}

// Render writes the changelog for the given releases, newest first.
func (g *Generator) Render(w io.Writer, releases []*models.Release) error {
	view := changelogView{Releases: make([]releaseView, 0, len(releases))}
	for _, release := range releases {
		view.Releases = append(view.Releases, buildReleaseView(release))
	}
	if err := g.template.Execute(w, view); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to render changelog")
	}
	return nil
}

type changelogView struct {
	Releases []releaseView
}

type releaseView struct {
	Title        string
	Date         string
	Groups       []groupView
	Contributors []contributorView
}

type groupView struct {
	Name    string
	Commits []commitView
}

type commitView struct {
	Short   string
	Subject string
}

type contributorView struct {
	Name      string
	FirstTime bool
}

// Section order of commit groups.
var groupOrder = []string{"Breaking Changes", "Features", "Bug Fixes", "Other"}

var typePattern = regexp.MustCompile(`^([a-zA-Z]+)(\([^)]*\))?(!?):`)

func groupName(message string) string {
	match := typePattern.FindStringSubmatch(message)
	if match == nil {
		return "Other"
	}
	if match[3] == "!" {
		return "Breaking Changes"
	}
	switch match[1] {
	case "feat":
		return "Features"
	case "fix":
		return "Bug Fixes"
	default:
		return "Other"
	}
}

func buildReleaseView(release *models.Release) releaseView {
	view := releaseView{Title: "[unreleased]"}
	if release.Version != nil {
		view.Title = *release.Version
	}
	if release.Timestamp > 0 {
		view.Date = time.Unix(release.Timestamp, 0).UTC().Format("2006-01-02")
	}

	grouped := make(map[string][]commitView)
	for _, commit := range release.Commits {
		name := groupName(commit.Message)
		grouped[name] = append(grouped[name], commitView{
			Short:   shortHash(commit.ID),
			Subject: subject(commit.Message),
		})
	}
	for _, name := range groupOrder {
		if commits, ok := grouped[name]; ok {
			view.Groups = append(view.Groups, groupView{Name: name, Commits: commits})
		}
	}

	view.Contributors = contributorViews(release)
	return view
}

// contributorViews merges the rosters of all forges, deduplicated by
// username, keeping each forge's insertion order.
func contributorViews(release *models.Release) []contributorView {
	var views []contributorView
	seen := make(map[string]bool)
	for _, forge := range models.Forges {
		for _, contributor := range release.RemoteMetadata(forge).Contributors {
			if contributor.Username == nil || seen[*contributor.Username] {
				continue
			}
			seen[*contributor.Username] = true
			views = append(views, contributorView{
				Name:      *contributor.Username,
				FirstTime: contributor.IsFirstTime,
			})
		}
	}
	return views
}

func shortHash(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}

// subject returns the first line of a message with its conventional type
// prefix stripped.
func subject(message string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	if match := typePattern.FindStringIndex(line); match != nil {
		line = line[match[1]:]
	}
	return strings.TrimSpace(line)
}

// WriteFile renders the changelog into a file.
func (g *Generator) WriteFile(path string, releases []*models.Release) error {
	file, err := os.Create(path)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeFileOperation,
			fmt.Sprintf("failed to create %s", path))
	}
	defer file.Close()
	return g.Render(file, releases)
}
