// Package analyzer produces the individual report sections, one language-model
// call per section.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/drpaneas/devgrowth/internal/llm"
	"github.com/drpaneas/devgrowth/internal/profile"
	"github.com/drpaneas/devgrowth/internal/report"
	"github.com/drpaneas/devgrowth/internal/summary"
	"github.com/drpaneas/devgrowth/internal/textutil"
)

// Bullet counts requested from the model for the list sections.
const (
	strengthsCount       = 5
	improvementCount     = 5
	recommendationsCount = 5
)

// ratingPattern matches the overall score line, e.g. "Rating: 7.5/10",
// with optional bold markers on either side of the colon.
var ratingPattern = regexp.MustCompile(`(?i)\brating\s*\**\s*:\s*\**\s*(\d+(\.\d+)?)\s*/\s*10\b\**`)

// CompletionError reports that the model call for a section failed or
// returned blank text.
type CompletionError struct {
	Section report.Section
	Err     error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("%s: completion failed: %v", e.Section, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// ParseError reports model output that does not have the section's expected shape.
type ParseError struct {
	Section report.Section
	Reason  string
	Raw     string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: unparseable completion: %s (raw: %q)", e.Section, e.Reason, textutil.Truncate(e.Raw, 200, "..."))
}

// Input is what every section analysis reads.
type Input struct {
	Profile   *profile.DeveloperProfile
	Summaries summary.Summaries
}

// Analyzer issues the per-section completion requests.
type Analyzer struct {
	provider llm.Provider
}

// New returns an Analyzer that uses the given LLM provider.
func New(provider llm.Provider) *Analyzer {
	return &Analyzer{provider: provider}
}

// Strengths lists the developer's key strengths.
func (a *Analyzer) Strengths(ctx context.Context, in Input) ([]string, error) {
	return a.list(ctx, report.Strengths, fmt.Sprintf(strengthsPrompt, buildContext(in), strengthsCount))
}

// AreasForImprovement lists constructive growth areas.
func (a *Analyzer) AreasForImprovement(ctx context.Context, in Input) ([]string, error) {
	return a.list(ctx, report.AreasForImprovement, fmt.Sprintf(improvementPrompt, buildContext(in), improvementCount))
}

// Recommendations lists actionable next steps.
func (a *Analyzer) Recommendations(ctx context.Context, in Input) ([]string, error) {
	return a.list(ctx, report.Recommendations, fmt.Sprintf(recommendationsPrompt, buildContext(in), recommendationsCount))
}

// TechnicalAssessment returns a single free-form paragraph.
func (a *Analyzer) TechnicalAssessment(ctx context.Context, in Input) (string, error) {
	return a.complete(ctx, report.TechnicalAssessment, fmt.Sprintf(technicalAssessmentPrompt, buildContext(in)))
}

// ProfileRating returns the overall score and its categorized explanation.
func (a *Analyzer) ProfileRating(ctx context.Context, in Input) (report.Rating, error) {
	raw, err := a.complete(ctx, report.ProfileRating, fmt.Sprintf(ratingPrompt, buildContext(in)))
	if err != nil {
		return report.Rating{}, err
	}
	return ParseRating(raw)
}

func (a *Analyzer) list(ctx context.Context, section report.Section, prompt string) ([]string, error) {
	raw, err := a.complete(ctx, section, prompt)
	if err != nil {
		return nil, err
	}
	items := ParseList(raw)
	if len(items) == 0 {
		return nil, &ParseError{Section: section, Reason: "no list items", Raw: raw}
	}
	return items, nil
}

// complete runs one model call and returns its trimmed, non-empty text.
func (a *Analyzer) complete(ctx context.Context, section report.Section, prompt string) (string, error) {
	slog.Debug("requesting section", "section", section, "prompt_bytes", len(prompt))
	raw, err := a.provider.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return "", &CompletionError{Section: section, Err: err}
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", &CompletionError{Section: section, Err: llm.ErrEmptyCompletion}
	}
	return text, nil
}

// ParseList splits model output into items, one per non-blank line, with
// bullet and numbering markers removed.
func ParseList(raw string) []string {
	var items []string
	for _, line := range strings.Split(raw, "\n") {
		if item := textutil.StripListMarker(line); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ParseRating extracts the overall "Rating: X/10" score and returns the rest
// of the text as the explanation. When several rating lines appear, the last
// one is the overall score.
func ParseRating(raw string) (report.Rating, error) {
	text := strings.TrimSpace(raw)
	matches := ratingPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return report.Rating{}, &ParseError{Section: report.ProfileRating, Reason: "missing overall rating", Raw: raw}
	}
	m := matches[len(matches)-1]
	score, err := strconv.ParseFloat(text[m[2]:m[3]], 64)
	if err != nil {
		return report.Rating{}, &ParseError{Section: report.ProfileRating, Reason: err.Error(), Raw: raw}
	}
	if score < 0 || score > 10 {
		return report.Rating{}, &ParseError{Section: report.ProfileRating, Reason: fmt.Sprintf("score %v outside 0-10", score), Raw: raw}
	}

	before := strings.TrimSpace(text[:lineStart(text, m[0])])
	after := strings.TrimSpace(text[lineEnd(text, m[1]):])
	explanation := strings.TrimSpace(strings.Join(nonEmpty(before, after), "\n\n"))
	if explanation == "" {
		return report.Rating{}, &ParseError{Section: report.ProfileRating, Reason: "missing explanation", Raw: raw}
	}
	return report.Rating{Score: math.Round(score*10) / 10, Explanation: explanation}, nil
}

// IsSectionError reports whether err came from a section analysis, as
// opposed to cancellation of the whole run.
func IsSectionError(err error) bool {
	var ce *CompletionError
	var pe *ParseError
	return errors.As(err, &ce) || errors.As(err, &pe)
}

func buildContext(in Input) string {
	u := in.Profile.User
	name := u.DisplayName
	if name == "" {
		name = u.Username
	}
	bio := u.Bio
	if bio == "" {
		bio = "Not provided"
	}
	since := "Unknown"
	if !u.AccountCreatedAt.IsZero() {
		since = u.AccountCreatedAt.Format("January 2006")
	}
	return fmt.Sprintf(profileContext,
		u.Username, name, bio, u.PublicRepoCount, u.FollowerCount, since,
		in.Summaries.Languages, in.Summaries.Repositories,
	)
}

func lineStart(s string, i int) int {
	return strings.LastIndex(s[:i], "\n") + 1
}

func lineEnd(s string, i int) int {
	if j := strings.Index(s[i:], "\n"); j >= 0 {
		return i + j
	}
	return len(s)
}

func nonEmpty(parts ...string) []string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
