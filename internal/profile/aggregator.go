package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMaxRepos bounds prompt size and the number of per-repo lookups.
	DefaultMaxRepos = 15
	// MaxForkCommits caps how many origin commits are inspected per fork.
	MaxForkCommits = 100

	lookupConcurrency = 8
)

// UserMetadata is what the data source reports about an account.
type UserMetadata struct {
	Login       string
	Name        string
	Bio         string
	PublicRepos int
	Followers   int
	Following   int
	CreatedAt   time.Time
	AvatarURL   string
}

// RepoListing is one entry of a user's repository listing.
type RepoListing struct {
	Owner       string
	Name        string
	Description string
	Language    string
	Stars       int
	Forks       int
	UpdatedAt   time.Time
	Topics      []string
	Archived    bool
	Fork        bool
}

// RepoDetail is the subset of a single-repository lookup the aggregator uses.
// Parent is nil for non-forks.
type RepoDetail struct {
	Parent *ParentRepo
}

// ParentRepo identifies a fork's origin.
type ParentRepo struct {
	Owner    string
	Name     string
	FullName string
	URL      string
}

// Commit is a single commit reference.
type Commit struct {
	SHA string
}

// DataSource is the read-only capability the aggregator needs from the
// code-hosting platform. Implementations must be safe for concurrent use.
// GetUser returns ErrNotFound for unknown handles, and every method may
// return a *RateLimitError.
type DataSource interface {
	GetUser(ctx context.Context, handle string) (UserMetadata, error)
	ListRepositories(ctx context.Context, handle string) ([]RepoListing, error)
	GetLanguages(ctx context.Context, owner, repo string) (map[string]int64, error)
	GetRepository(ctx context.Context, owner, repo string) (RepoDetail, error)
	ListCommitsByAuthor(ctx context.Context, owner, repo, author string, limit int) ([]Commit, error)
}

// Options controls repository selection.
type Options struct {
	MaxRepos     int
	IncludeForks bool
}

// Aggregator builds DeveloperProfiles from a DataSource.
type Aggregator struct {
	source DataSource
	opts   Options
}

// NewAggregator returns an Aggregator reading from source.
func NewAggregator(source DataSource, opts Options) *Aggregator {
	if opts.MaxRepos < 1 {
		opts.MaxRepos = DefaultMaxRepos
	}
	return &Aggregator{source: source, opts: opts}
}

// Build fetches the user's metadata and repositories and returns a ranked,
// truncated profile with aggregated language statistics.
func (a *Aggregator) Build(ctx context.Context, username string) (*DeveloperProfile, error) {
	var (
		meta     UserMetadata
		listings []RepoListing
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := a.source.GetUser(gCtx, username)
		if err != nil {
			return classify("fetching user", err)
		}
		meta = m
		return nil
	})
	g.Go(func() error {
		l, err := a.source.ListRepositories(gCtx, username)
		if err != nil {
			return classify("listing repositories", err)
		}
		listings = l
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	selected := selectRepositories(listings, a.opts)
	slog.Debug("selected repositories", "username", username, "listed", len(listings), "selected", len(selected))

	// enrich never fails, so the group is only a bounded join.
	repos := make([]Repository, len(selected))
	var lookups errgroup.Group
	lookups.SetLimit(lookupConcurrency)
	for i, l := range selected {
		lookups.Go(func() error {
			repos[i] = a.enrich(ctx, username, l)
			return nil
		})
	}
	_ = lookups.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetching repository details: %w", err)
	}

	p := &DeveloperProfile{
		User: User{
			Username:         meta.Login,
			DisplayName:      meta.Name,
			Bio:              meta.Bio,
			PublicRepoCount:  meta.PublicRepos,
			FollowerCount:    meta.Followers,
			FollowingCount:   meta.Following,
			AccountCreatedAt: meta.CreatedAt,
			AvatarURL:        meta.AvatarURL,
		},
		Repositories: repos,
	}
	if p.User.Username == "" {
		p.User.Username = username
	}
	p.RecomputeLanguageStats()
	return p, nil
}

// enrich fills in language bytes and, for forks, origin and contribution
// data. Lookup failures degrade to missing data; they never fail the build.
func (a *Aggregator) enrich(ctx context.Context, username string, l RepoListing) Repository {
	repo := Repository{
		Name:            l.Name,
		Owner:           l.Owner,
		Description:     l.Description,
		PrimaryLanguage: l.Language,
		LanguageBytes:   map[string]int64{},
		StarCount:       l.Stars,
		ForkCount:       l.Forks,
		UpdatedAt:       l.UpdatedAt,
		Topics:          l.Topics,
		IsArchived:      l.Archived,
		IsFork:          l.Fork,
	}
	owner := l.Owner
	if owner == "" {
		owner = username
	}

	langs, err := a.source.GetLanguages(ctx, owner, l.Name)
	if err != nil {
		slog.Warn("language data unavailable", "repo", owner+"/"+l.Name, "error", err)
	} else if langs != nil {
		repo.LanguageBytes = langs
	}

	if !l.Fork {
		return repo
	}
	detail, err := a.source.GetRepository(ctx, owner, l.Name)
	if err != nil {
		slog.Warn("could not fetch fork origin", "repo", owner+"/"+l.Name, "error", err)
		return repo
	}
	if detail.Parent == nil {
		return repo
	}
	repo.ForkOrigin = &ForkOrigin{FullName: detail.Parent.FullName, URL: detail.Parent.URL}

	commits, err := a.source.ListCommitsByAuthor(ctx, detail.Parent.Owner, detail.Parent.Name, username, MaxForkCommits)
	if err != nil {
		slog.Debug("could not list fork contributions", "origin", detail.Parent.FullName, "error", err)
		return repo
	}
	n := min(len(commits), MaxForkCommits)
	repo.ForkContribution = &ForkContribution{HasCommits: n > 0, CommitCount: n}
	return repo
}

// selectRepositories drops archived (and optionally forked) repositories,
// ranks non-forks ahead of forks and then by descending stars, and truncates
// to opts.MaxRepos. The sort is stable so ties keep listing order.
func selectRepositories(listings []RepoListing, opts Options) []RepoListing {
	kept := make([]RepoListing, 0, len(listings))
	for _, l := range listings {
		if l.Archived {
			continue
		}
		if l.Fork && !opts.IncludeForks {
			continue
		}
		kept = append(kept, l)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Fork != kept[j].Fork {
			return !kept[i].Fork
		}
		return kept[i].Stars > kept[j].Stars
	})
	if opts.MaxRepos > 0 && len(kept) > opts.MaxRepos {
		kept = kept[:opts.MaxRepos]
	}
	return kept
}

// classify keeps NotFound, RateLimited and context errors as they are and
// wraps everything else in an UpstreamError.
func classify(op string, err error) error {
	var rl *RateLimitError
	switch {
	case errors.Is(err, ErrNotFound), errors.As(err, &rl):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	}
	var up *UpstreamError
	if errors.As(err, &up) {
		return err
	}
	return &UpstreamError{Op: op, Err: err}
}

func sortByBytes(langs []string, bytes map[string]int64) {
	sort.Slice(langs, func(i, j int) bool {
		if bytes[langs[i]] != bytes[langs[j]] {
			return bytes[langs[i]] > bytes[langs[j]]
		}
		return langs[i] < langs[j]
	})
}
