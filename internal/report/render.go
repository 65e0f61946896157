package report

import (
	"bytes"
	"fmt"
	"html/template"
)

var emailTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; max-width: 640px; margin: auto;">
<h1>Developer growth report for @{{.Username}}</h1>
<p><strong>Profile rating: {{printf "%.1f" .Report.ProfileRating.Score}}/10</strong></p>
<p>{{.Report.ProfileRating.Explanation}}</p>
<h2>Strengths</h2>
<ul>{{range .Report.Strengths}}<li>{{.}}</li>{{end}}</ul>
<h2>Areas for improvement</h2>
<ul>{{range .Report.AreasForImprovement}}<li>{{.}}</li>{{end}}</ul>
<h2>Recommendations</h2>
<ul>{{range .Report.Recommendations}}<li>{{.}}</li>{{end}}</ul>
<h2>Technical assessment</h2>
<p>{{.Report.TechnicalAssessment}}</p>
</body>
</html>
`))

// RenderHTML renders r as a self-contained HTML email body.
func RenderHTML(username string, r *Report) (string, error) {
	if r == nil {
		return "", fmt.Errorf("render report for %s: nil report", username)
	}
	var buf bytes.Buffer
	err := emailTemplate.Execute(&buf, struct {
		Username string
		Report   *Report
	}{username, r})
	if err != nil {
		return "", fmt.Errorf("render report for %s: %w", username, err)
	}
	return buf.String(), nil
}

// EmailSubject is the subject line for an emailed report.
func EmailSubject(username string) string {
	return fmt.Sprintf("Your developer growth report for @%s", username)
}
