// Package summary renders a DeveloperProfile into the text blocks every
// analysis prompt embeds.
package summary

import (
	"fmt"
	"strings"

	"github.com/drpaneas/devgrowth/internal/profile"
	"github.com/drpaneas/devgrowth/internal/textutil"
)

const (
	NoLanguageData    = "Language data not available"
	NoDescription     = "No description"
	NotSpecified      = "Not specified"
	NoTopics          = "None"
	BlockSeparator    = "\n---\n"
	maxDescriptionLen = 300
)

// Summaries are the two profile renderings shared by all section prompts.
type Summaries struct {
	Languages    string
	Repositories string
}

// Format renders p. The output depends only on p, so repeated calls on the
// same profile are byte-identical.
func Format(p *profile.DeveloperProfile) Summaries {
	return Summaries{
		Languages:    LanguageSummary(p),
		Repositories: RepositorySummary(p),
	}
}

// LanguageSummary lists each language with its share of all bytes in the
// profile, in order of first appearance.
func LanguageSummary(p *profile.DeveloperProfile) string {
	total := p.TotalLanguageBytes()
	if total <= 0 {
		return NoLanguageData
	}
	langs := p.Languages()
	parts := make([]string, 0, len(langs))
	for _, lang := range langs {
		parts = append(parts, fmt.Sprintf("%s: %.1f%%", lang, percent(p.LanguageStats[lang], total)))
	}
	return strings.Join(parts, ", ")
}

// RepositorySummary renders one block per repository joined by BlockSeparator.
func RepositorySummary(p *profile.DeveloperProfile) string {
	blocks := make([]string, 0, len(p.Repositories))
	for i := range p.Repositories {
		blocks = append(blocks, repositoryBlock(&p.Repositories[i], p.User.Username))
	}
	return strings.Join(blocks, BlockSeparator)
}

func repositoryBlock(r *profile.Repository, username string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n", r.Name)

	desc := strings.TrimSpace(r.Description)
	if desc == "" {
		desc = NoDescription
	}
	fmt.Fprintf(&b, "Description: %s\n", textutil.Truncate(desc, maxDescriptionLen, "..."))

	primary := r.PrimaryLanguage
	if primary == "" {
		primary = NotSpecified
	}
	fmt.Fprintf(&b, "Primary Language: %s\n", primary)
	fmt.Fprintf(&b, "Languages: %s\n", repoLanguages(r, primary))
	fmt.Fprintf(&b, "Stars: %d\n", r.StarCount)
	fmt.Fprintf(&b, "Forks: %d\n", r.ForkCount)

	topics := NoTopics
	if len(r.Topics) > 0 {
		topics = strings.Join(r.Topics, ", ")
	}
	fmt.Fprintf(&b, "Topics: %s", topics)

	if r.IsFork {
		b.WriteString("\n")
		b.WriteString(forkNote(r, username))
	}
	return b.String()
}

func repoLanguages(r *profile.Repository, primary string) string {
	var total int64
	for _, n := range r.LanguageBytes {
		total += n
	}
	if total <= 0 {
		return primary
	}
	langs := r.SortedLanguages()
	parts := make([]string, 0, len(langs))
	for _, lang := range langs {
		parts = append(parts, fmt.Sprintf("%s (%.1f%%)", lang, percent(r.LanguageBytes[lang], total)))
	}
	return strings.Join(parts, ", ")
}

func forkNote(r *profile.Repository, username string) string {
	if r.ForkOrigin == nil {
		return "Fork: yes (origin unknown)"
	}
	note := "Fork of " + r.ForkOrigin.FullName
	switch c := r.ForkContribution; {
	case c == nil:
	case c.HasCommits:
		note += fmt.Sprintf(" (%d commits by %s)", c.CommitCount, username)
	default:
		note += fmt.Sprintf(" (no commits by %s)", username)
	}
	return note
}

func percent(n, total int64) float64 {
	return float64(n) / float64(total) * 100
}
