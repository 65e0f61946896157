// Package notify holds the fire-and-forget side effects of an analysis:
// analytics events and emailed reports.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/drpaneas/devgrowth/internal/textutil"
)

// Analytics event names.
const (
	EventAnalysisCompleted = "analysis_completed"
	EventAnalysisFailed    = "analysis_failed"
	EventProfileFetched    = "profile_fetched"
)

// CategoryAnalysis groups every event emitted by the analysis flow.
const CategoryAnalysis = "analysis"

// ErrInvalidRecipient is returned by Send for an unparseable address.
var ErrInvalidRecipient = errors.New("invalid recipient")

// Tracker records analytics events. Implementations must not block the caller
// for long and must never fail a request.
type Tracker interface {
	Track(ctx context.Context, event, category, label string)
}

// Mailer delivers an HTML report by email.
type Mailer interface {
	Send(ctx context.Context, to, htmlBody, subject string) error
}

// LogTracker writes analytics events to the structured log.
type LogTracker struct {
	log *slog.Logger
}

// NewLogTracker returns a Tracker backed by log, or the default logger when nil.
func NewLogTracker(log *slog.Logger) *LogTracker {
	if log == nil {
		log = slog.Default()
	}
	return &LogTracker{log: log}
}

func (t *LogTracker) Track(ctx context.Context, event, category, label string) {
	t.log.InfoContext(ctx, "analytics event", "event", event, "category", category, "label", label)
}

// LogMailer validates the message and logs it instead of delivering it.
type LogMailer struct {
	log *slog.Logger
}

// NewLogMailer returns a Mailer backed by log, or the default logger when nil.
func NewLogMailer(log *slog.Logger) *LogMailer {
	if log == nil {
		log = slog.Default()
	}
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, to, htmlBody, subject string) error {
	addr, err := mail.ParseAddress(to)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidRecipient, to, err)
	}
	if strings.TrimSpace(subject) == "" {
		return errors.New("subject is required")
	}
	m.log.InfoContext(ctx, "email queued",
		"to", addr.Address,
		"subject", subject,
		"body_bytes", len(htmlBody),
		"preview", textutil.Truncate(htmlBody, 80, "..."),
	)
	return nil
}
