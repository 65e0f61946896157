package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/drpaneas/devgrowth/internal/notify"
	"github.com/drpaneas/devgrowth/internal/profile"
	"github.com/drpaneas/devgrowth/internal/report"
	"github.com/gofiber/fiber/v2"
)

// CompleteEvent is the last event of a successful stream.
type CompleteEvent struct {
	Complete bool           `json:"complete"`
	Analysis *report.Report `json:"analysis"`
}

// stream relays each settled section as a server-sent event, then a final
// complete or error event. The analysis runs under its own timeout because
// the fiber context is recycled once the handler returns.
func (s *Server) stream(c *fiber.Ctx, p *profile.DeveloperProfile) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	username := p.User.Username
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		// One slot per section: onUpdate never blocks the orchestrator.
		events := make(chan report.Update, len(report.Sections))
		var (
			rep    *report.Report
			runErr error
		)
		go func() {
			defer close(events)
			rep, runErr = s.deps.Analysis.Run(ctx, p, func(u report.Update) {
				events <- u
			})
		}()

		connected := true
		for u := range events {
			if !connected {
				continue
			}
			if err := writeEvent(w, u); err != nil {
				s.log.Info("client disconnected, cancelling analysis", "username", username, "error", err)
				connected = false
				cancel()
			}
		}
		if !connected {
			s.track(notify.EventAnalysisFailed, username)
			return
		}

		if runErr == nil {
			runErr = ctx.Err()
		}
		var final any = CompleteEvent{Complete: true, Analysis: rep}
		if runErr != nil {
			s.log.Warn("analysis failed", "username", username, "error", runErr)
			_, panel := classify(runErr)
			final = ErrorResponse{Error: panel}
			s.track(notify.EventAnalysisFailed, username)
		} else {
			s.track(notify.EventAnalysisCompleted, username)
		}
		if err := writeEvent(w, final); err != nil {
			s.log.Info("client disconnected before final event", "username", username, "error", err)
		}
	})
	return nil
}

// writeEvent frames v as one SSE data event and flushes it.
func writeEvent(w *bufio.Writer, v any) error {
	if err := encodeEvent(w, v); err != nil {
		return err
	}
	return w.Flush()
}

func encodeEvent(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", b)
	return err
}
