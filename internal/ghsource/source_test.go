package ghsource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/drpaneas/devgrowth/internal/profile"
)

func newTestSource(t *testing.T, mux *http.ServeMux, now time.Time) *Source {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	s, err := New("", srv.URL)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	s.now = func() time.Time { return now }
	return s
}

func TestAggregatorRateLimited(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	reset := now.Add(12 * time.Minute)

	quota := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", fmt.Sprint(reset.Unix()))
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"API rate limit exceeded for 203.0.113.7.","documentation_url":"https://docs.github.com/rest/overview/resources-in-the-rest-api#rate-limiting"}`)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/users/octo", quota)
	mux.HandleFunc("/users/octo/repos", quota)

	agg := profile.NewAggregator(newTestSource(t, mux, now), profile.Options{})
	_, err := agg.Build(context.Background(), "octo")

	var rl *profile.RateLimitError
	if !errors.As(err, &rl) {
		t.Fatalf("Build() error = %v, want *profile.RateLimitError", err)
	}
	if !strings.Contains(rl.Error(), "12 minutes") {
		t.Errorf("message = %q, want it to mention 12 minutes", rl.Error())
	}
}

func TestGetUserNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/ghost", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})
	_, err := newTestSource(t, mux, time.Now()).GetUser(context.Background(), "ghost")
	if !errors.Is(err, profile.ErrNotFound) {
		t.Errorf("GetUser() error = %v, want ErrNotFound", err)
	}
}

func TestUpstreamError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/octo", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message":"Server Error"}`)
	})
	_, err := newTestSource(t, mux, time.Now()).GetUser(context.Background(), "octo")
	var up *profile.UpstreamError
	if !errors.As(err, &up) {
		t.Errorf("GetUser() error = %v, want *profile.UpstreamError", err)
	}
}

func TestBuildAgainstFakeAPI(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/octo", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"login":"octo","name":"Octo Cat","followers":12,"following":3,"public_repos":3,"avatar_url":"https://avatars.example/octo","created_at":"2015-04-01T00:00:00Z"}`)
	})
	mux.HandleFunc("/users/octo/repos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"name":"tool","owner":{"login":"octo"},"stargazers_count":4,"language":"Go","topics":["cli"]},
			{"name":"kernel","owner":{"login":"octo"},"stargazers_count":90,"fork":true},
			{"name":"attic","owner":{"login":"octo"},"stargazers_count":500,"archived":true}
		]`)
	})
	mux.HandleFunc("/repos/octo/tool/languages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Go":900,"Makefile":100}`)
	})
	mux.HandleFunc("/repos/octo/kernel/languages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"C":5000}`)
	})
	mux.HandleFunc("/repos/octo/kernel", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":"kernel","fork":true,"parent":{"name":"linux","full_name":"torvalds/linux","html_url":"https://github.com/torvalds/linux","owner":{"login":"torvalds"}}}`)
	})
	mux.HandleFunc("/repos/torvalds/linux/commits", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("author"); got != "octo" {
			t.Errorf("author = %q, want octo", got)
		}
		if got := r.URL.Query().Get("per_page"); got != "100" {
			t.Errorf("per_page = %q, want 100", got)
		}
		fmt.Fprint(w, `[{"sha":"a1"},{"sha":"b2"}]`)
	})

	agg := profile.NewAggregator(newTestSource(t, mux, time.Now()), profile.Options{MaxRepos: 15, IncludeForks: true})
	p, err := agg.Build(context.Background(), "octo")
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if p.User.DisplayName != "Octo Cat" || p.User.FollowerCount != 12 {
		t.Errorf("user = %+v", p.User)
	}
	if len(p.Repositories) != 2 {
		t.Fatalf("got %d repositories, want 2 (archived excluded)", len(p.Repositories))
	}
	if p.Repositories[0].Name != "tool" || p.Repositories[1].Name != "kernel" {
		t.Errorf("order = %s,%s, want tool,kernel", p.Repositories[0].Name, p.Repositories[1].Name)
	}
	fork := p.Repositories[1]
	if fork.ForkOrigin == nil || fork.ForkOrigin.FullName != "torvalds/linux" {
		t.Fatalf("ForkOrigin = %+v", fork.ForkOrigin)
	}
	if fork.ForkContribution == nil || fork.ForkContribution.CommitCount != 2 {
		t.Errorf("ForkContribution = %+v, want 2 commits", fork.ForkContribution)
	}
	if p.LanguageStats["C"] != 5000 || p.LanguageStats["Go"] != 900 {
		t.Errorf("LanguageStats = %v", p.LanguageStats)
	}
}
