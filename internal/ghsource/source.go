// Package ghsource implements profile.DataSource on top of the GitHub REST API.
package ghsource

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/drpaneas/devgrowth/internal/profile"
	"github.com/google/go-github/v68/github"
)

const perPage = 100

// Source reads public GitHub data. It holds no per-request state and is
// safe to share across concurrent requests.
type Source struct {
	client *github.Client
	now    func() time.Time
}

// New returns a Source. token may be empty for unauthenticated access;
// baseURL overrides the API endpoint (empty means api.github.com).
func New(token, baseURL string) (*Source, error) {
	client, err := newGitHubClient(token, baseURL)
	if err != nil {
		return nil, err
	}
	return &Source{client: client, now: time.Now}, nil
}

var _ profile.DataSource = (*Source)(nil)

func (s *Source) GetUser(ctx context.Context, handle string) (profile.UserMetadata, error) {
	user, _, err := s.client.Users.Get(ctx, handle)
	if err != nil {
		return profile.UserMetadata{}, s.translate("get user", err)
	}
	return profile.UserMetadata{
		Login:       user.GetLogin(),
		Name:        user.GetName(),
		Bio:         user.GetBio(),
		PublicRepos: user.GetPublicRepos(),
		Followers:   user.GetFollowers(),
		Following:   user.GetFollowing(),
		CreatedAt:   user.GetCreatedAt().Time,
		AvatarURL:   user.GetAvatarURL(),
	}, nil
}

func (s *Source) ListRepositories(ctx context.Context, handle string) ([]profile.RepoListing, error) {
	opts := &github.RepositoryListByUserOptions{
		Type:        "owner",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var all []profile.RepoListing
	for {
		repos, resp, err := s.client.Repositories.ListByUser(ctx, handle, opts)
		if err != nil {
			return nil, s.translate("list repositories", err)
		}
		for _, r := range repos {
			all = append(all, profile.RepoListing{
				Owner:       r.GetOwner().GetLogin(),
				Name:        r.GetName(),
				Description: r.GetDescription(),
				Language:    r.GetLanguage(),
				Stars:       r.GetStargazersCount(),
				Forks:       r.GetForksCount(),
				UpdatedAt:   r.GetUpdatedAt().Time,
				Topics:      r.Topics,
				Archived:    r.GetArchived(),
				Fork:        r.GetFork(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

func (s *Source) GetLanguages(ctx context.Context, owner, repo string) (map[string]int64, error) {
	langs, _, err := s.client.Repositories.ListLanguages(ctx, owner, repo)
	if err != nil {
		return nil, s.translate("list languages", err)
	}
	out := make(map[string]int64, len(langs))
	for lang, n := range langs {
		out[lang] = int64(n)
	}
	return out, nil
}

func (s *Source) GetRepository(ctx context.Context, owner, repo string) (profile.RepoDetail, error) {
	r, _, err := s.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return profile.RepoDetail{}, s.translate("get repository", err)
	}
	parent := r.GetParent()
	if parent == nil {
		return profile.RepoDetail{}, nil
	}
	return profile.RepoDetail{Parent: &profile.ParentRepo{
		Owner:    parent.GetOwner().GetLogin(),
		Name:     parent.GetName(),
		FullName: parent.GetFullName(),
		URL:      parent.GetHTMLURL(),
	}}, nil
}

// ListCommitsByAuthor returns at most limit commits (and never more than
// one API page) authored by author.
func (s *Source) ListCommitsByAuthor(ctx context.Context, owner, repo, author string, limit int) ([]profile.Commit, error) {
	if limit <= 0 || limit > perPage {
		limit = perPage
	}
	commits, _, err := s.client.Repositories.ListCommits(ctx, owner, repo, &github.CommitsListOptions{
		Author:      author,
		ListOptions: github.ListOptions{PerPage: limit},
	})
	if err != nil {
		return nil, s.translate("list commits", err)
	}
	if len(commits) > limit {
		commits = commits[:limit]
	}
	out := make([]profile.Commit, len(commits))
	for i, c := range commits {
		out[i] = profile.Commit{SHA: c.GetSHA()}
	}
	return out, nil
}

// translate maps go-github errors onto the profile error taxonomy.
func (s *Source) translate(op string, err error) error {
	var rle *github.RateLimitError
	if errors.As(err, &rle) {
		return profile.NewRateLimitError(rle.Rate.Reset.Time, s.now())
	}
	var abuse *github.AbuseRateLimitError
	if errors.As(err, &abuse) {
		var reset time.Time
		if d := abuse.GetRetryAfter(); d > 0 {
			reset = s.now().Add(d)
		}
		return profile.NewRateLimitError(reset, s.now())
	}
	var er *github.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		switch code := er.Response.StatusCode; {
		case code == http.StatusNotFound:
			return profile.ErrNotFound
		case (code == http.StatusForbidden || code == http.StatusTooManyRequests) &&
			strings.Contains(strings.ToLower(er.Message), "rate limit"):
			return profile.NewRateLimitError(resetFromHeader(er.Response.Header), s.now())
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &profile.UpstreamError{Op: op, Err: err}
}

func resetFromHeader(h http.Header) time.Time {
	secs, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}
