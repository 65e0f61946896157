package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/drpaneas/devgrowth/internal/notify"
	"github.com/drpaneas/devgrowth/internal/profile"
	"github.com/drpaneas/devgrowth/internal/report"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// AnalyzeResponse is the body of a non-streamed analysis.
type AnalyzeResponse struct {
	Analysis *report.Report `json:"analysis"`
}

// EmailRequest asks for a finished report to be emailed.
type EmailRequest struct {
	Email    string         `json:"email"`
	Username string         `json:"username"`
	Analysis *report.Report `json:"analysis"`
}

func (s *Server) getProfile(c *fiber.Ctx) error {
	// Params alias the request buffer, which fasthttp reuses after the
	// handler returns; the name outlives it in tracking and logs.
	username := utils.CopyString(c.Params("username"))
	if !profile.ValidHandle(username) {
		return writeError(c, fmt.Errorf("%w: %q is not a valid GitHub username", errInvalidRequest, username))
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.timeout)
	defer cancel()

	p, err := s.deps.Profiles.Build(ctx, username)
	if err != nil {
		s.log.Warn("profile lookup failed", "username", username, "error", err)
		return writeError(c, err)
	}
	s.track(notify.EventProfileFetched, username)
	return c.JSON(p)
}

func (s *Server) analyze(c *fiber.Ctx) error {
	var p profile.DeveloperProfile
	if err := c.BodyParser(&p); err != nil {
		return writeError(c, fmt.Errorf("%w: request body must be a JSON developer profile", errInvalidRequest))
	}
	if !profile.ValidHandle(p.User.Username) {
		return writeError(c, fmt.Errorf("%w: profile has no valid username", errInvalidRequest))
	}
	// Clients may post edited profiles; the stats are derived, never trusted.
	p.RecomputeLanguageStats()

	if wantsStream(c) {
		return s.stream(c, &p)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.timeout)
	defer cancel()

	rep, err := s.deps.Analysis.Run(ctx, &p, nil)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.log.Warn("analysis failed", "username", p.User.Username, "error", err)
		s.track(notify.EventAnalysisFailed, p.User.Username)
		return writeError(c, err)
	}
	s.track(notify.EventAnalysisCompleted, p.User.Username)
	return c.JSON(AnalyzeResponse{Analysis: rep})
}

func (s *Server) emailReport(c *fiber.Ctx) error {
	var req EmailRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fmt.Errorf("%w: malformed email request", errInvalidRequest))
	}
	if !profile.ValidHandle(req.Username) || req.Analysis == nil {
		return writeError(c, fmt.Errorf("%w: username and analysis are required", errInvalidRequest))
	}

	body, err := report.RenderHTML(req.Username, req.Analysis)
	if err != nil {
		return writeError(c, err)
	}
	if err := s.deps.Mailer.Send(c.UserContext(), req.Email, body, report.EmailSubject(req.Username)); err != nil {
		if errors.Is(err, notify.ErrInvalidRecipient) {
			err = fmt.Errorf("%w: %v", errInvalidRequest, err)
		}
		s.log.Warn("email delivery failed", "username", req.Username, "error", err)
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusAccepted)
}

func wantsStream(c *fiber.Ctx) bool {
	return c.Query("stream") == "true" || strings.Contains(c.Get(fiber.HeaderAccept), "text/event-stream")
}
