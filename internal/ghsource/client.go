package ghsource

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// lowQuotaThreshold is the remaining-request count below which every
// response logs a warning.
const lowQuotaThreshold = 10

func newGitHubClient(token, baseURL string) (*github.Client, error) {
	var base http.RoundTripper = http.DefaultTransport
	if token != "" {
		base = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   base,
		}
	}
	// No client-level timeout: the request boundary owns the deadline.
	client := github.NewClient(&http.Client{Transport: &quotaTransport{base: base}})
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, err
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		client.BaseURL = u
	}
	return client, nil
}

// quotaTransport logs GitHub's rate-limit headers. It never waits or
// retries; exhaustion is reported to the caller as an error instead.
type quotaTransport struct {
	base http.RoundTripper
}

func (t *quotaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	remaining := resp.Header.Get("X-RateLimit-Remaining")
	if remaining == "" {
		return resp, nil
	}
	rem, err := strconv.Atoi(remaining)
	if err != nil {
		return resp, nil
	}
	if rem <= lowQuotaThreshold {
		attrs := []any{"remaining", rem, "path", req.URL.Path}
		if reset, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
			attrs = append(attrs, "resets_in", time.Until(time.Unix(reset, 0)).Round(time.Second))
		}
		slog.Warn("github quota nearly exhausted", attrs...)
	} else {
		slog.Debug("github request", "path", req.URL.Path, "status", resp.StatusCode, "remaining", rem)
	}
	return resp, nil
}
