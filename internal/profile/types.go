package profile

import (
	"regexp"
	"sort"
	"time"
)

var validHandle = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,37}[a-zA-Z0-9])?$`)

// ValidHandle reports whether s is a syntactically valid GitHub username.
func ValidHandle(s string) bool {
	return validHandle.MatchString(s)
}

// DeveloperProfile is the normalized input to one analysis run.
type DeveloperProfile struct {
	User          User             `json:"user"`
	Repositories  []Repository     `json:"repositories"`
	LanguageStats map[string]int64 `json:"languageStats"`
}

// User holds GitHub account metadata.
type User struct {
	Username         string    `json:"username"`
	DisplayName      string    `json:"displayName,omitempty"`
	Bio              string    `json:"bio,omitempty"`
	PublicRepoCount  int       `json:"publicRepoCount"`
	FollowerCount    int       `json:"followerCount"`
	FollowingCount   int       `json:"followingCount"`
	AccountCreatedAt time.Time `json:"accountCreatedAt"`
	AvatarURL        string    `json:"avatarUrl"`
}

// Repository is a snapshot of one repository. ForkOrigin and
// ForkContribution are only set when IsFork is true.
type Repository struct {
	Name             string            `json:"name"`
	Owner            string            `json:"owner,omitempty"`
	Description      string            `json:"description,omitempty"`
	PrimaryLanguage  string            `json:"primaryLanguage,omitempty"`
	LanguageBytes    map[string]int64  `json:"languageBytes"`
	StarCount        int               `json:"starCount"`
	ForkCount        int               `json:"forkCount"`
	UpdatedAt        time.Time         `json:"updatedAt"`
	Topics           []string          `json:"topics,omitempty"`
	IsArchived       bool              `json:"isArchived"`
	IsFork           bool              `json:"isFork"`
	ForkOrigin       *ForkOrigin       `json:"forkOrigin,omitempty"`
	ForkContribution *ForkContribution `json:"forkContribution,omitempty"`
}

// ForkOrigin identifies the repository a fork was created from.
type ForkOrigin struct {
	FullName string `json:"fullName"`
	URL      string `json:"url"`
}

// ForkContribution counts commits the profile owner authored in a fork's origin.
type ForkContribution struct {
	HasCommits  bool `json:"hasCommits"`
	CommitCount int  `json:"commitCount"`
}

// RecomputeLanguageStats rebuilds LanguageStats from the repositories'
// language byte maps. Call it after any change to Repositories.
func (p *DeveloperProfile) RecomputeLanguageStats() {
	stats := make(map[string]int64)
	for _, repo := range p.Repositories {
		for lang, n := range repo.LanguageBytes {
			stats[lang] += n
		}
	}
	p.LanguageStats = stats
}

// TotalLanguageBytes returns the sum of all LanguageStats values.
func (p *DeveloperProfile) TotalLanguageBytes() int64 {
	var total int64
	for _, n := range p.LanguageStats {
		total += n
	}
	return total
}

// Languages returns language names in order of first appearance across the
// ranked repositories. Map iteration order is random, so callers that need
// stable output use this instead of ranging over LanguageStats.
func (p *DeveloperProfile) Languages() []string {
	seen := make(map[string]bool, len(p.LanguageStats))
	var out []string
	for _, repo := range p.Repositories {
		for _, lang := range repo.SortedLanguages() {
			if !seen[lang] {
				seen[lang] = true
				out = append(out, lang)
			}
		}
	}
	// Stats supplied directly (e.g. decoded from a request) may name
	// languages no repository carries.
	var rest []string
	for lang := range p.LanguageStats {
		if !seen[lang] {
			rest = append(rest, lang)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// SortedLanguages returns the repository's languages by descending byte
// count, breaking ties by name.
func (r *Repository) SortedLanguages() []string {
	langs := make([]string, 0, len(r.LanguageBytes))
	for lang := range r.LanguageBytes {
		langs = append(langs, lang)
	}
	sortByBytes(langs, r.LanguageBytes)
	return langs
}
