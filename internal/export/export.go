// Package export writes finished reports to disk as Markdown and JSON.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/drpaneas/devgrowth/internal/profile"
	"github.com/drpaneas/devgrowth/internal/report"
)

const markdownTemplate = `# Developer growth report: @{{.Username}}

{{if .DisplayName}}{{.DisplayName}} · {{end}}{{.Repositories}} repositories analyzed{{if .Languages}} · {{.Languages}}{{end}}

## Profile rating: {{printf "%.1f" .Report.ProfileRating.Score}}/10

{{.Report.ProfileRating.Explanation}}

## Strengths
{{range .Report.Strengths}}
- {{.}}{{end}}

## Areas for improvement
{{range .Report.AreasForImprovement}}
- {{.}}{{end}}

## Recommendations
{{range .Report.Recommendations}}
- {{.}}{{end}}

## Technical assessment

{{.Report.TechnicalAssessment}}
`

var markdown = template.Must(template.New("report").Parse(markdownTemplate))

// maxHeaderLanguages caps the languages listed under the title.
const maxHeaderLanguages = 5

// Writer writes report files under outputDir.
type Writer struct {
	outputDir string
}

// NewWriter returns a Writer that writes to outputDir.
func NewWriter(outputDir string) *Writer {
	return &Writer{outputDir: outputDir}
}

type markdownData struct {
	Username     string
	DisplayName  string
	Repositories int
	Languages    string
	Report       *report.Report
}

// Write stores rep as <outputDir>/<username>/REPORT.md and report.json and
// returns both paths. p supplies the header details and may be nil.
func (w *Writer) Write(username string, p *profile.DeveloperProfile, rep *report.Report) ([]string, error) {
	if rep == nil {
		return nil, fmt.Errorf("exporting report for %s: nil report", username)
	}
	data := markdownData{Username: username, Report: rep}
	if p != nil {
		data.DisplayName = p.User.DisplayName
		data.Repositories = len(p.Repositories)
		langs := p.Languages()
		if len(langs) > maxHeaderLanguages {
			langs = langs[:maxHeaderLanguages]
		}
		data.Languages = strings.Join(langs, ", ")
	}

	var md bytes.Buffer
	if err := markdown.Execute(&md, data); err != nil {
		return nil, fmt.Errorf("executing report template: %w", err)
	}
	js, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}

	dir := filepath.Join(w.outputDir, username)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	var paths []string
	for _, f := range []struct {
		name string
		body []byte
	}{
		{"REPORT.md", md.Bytes()},
		{"report.json", append(js, '\n')},
	} {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, f.body, 0o644); err != nil {
			return nil, fmt.Errorf("writing file %s: %w", path, err)
		}
		slog.Info("wrote report", "path", path)
		paths = append(paths, path)
	}
	return paths, nil
}
