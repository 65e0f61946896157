package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/drpaneas/devgrowth/internal/orchestrator"
	"github.com/drpaneas/devgrowth/internal/profile"
	"github.com/gofiber/fiber/v2"
)

// Error kinds reported to clients.
const (
	KindNotFound       = "not_found"
	KindRateLimited    = "rate_limited"
	KindTimeout        = "timeout"
	KindUpstream       = "upstream"
	KindInvalidRequest = "invalid_request"
	KindInternal       = "internal"
)

// errInvalidRequest marks client input the handlers reject themselves.
var errInvalidRequest = errors.New("invalid request")

// ErrorPanel is the user-visible description of a failure.
type ErrorPanel struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ErrorResponse is the JSON body of every failed request and of the SSE
// error event.
type ErrorResponse struct {
	Error ErrorPanel `json:"error"`
}

// classify maps an error to its HTTP status and panel.
func classify(err error) (int, ErrorPanel) {
	var rle *profile.RateLimitError
	var ue *profile.UpstreamError
	switch {
	case errors.Is(err, errInvalidRequest), errors.Is(err, orchestrator.ErrInvalidProfile):
		return http.StatusBadRequest, ErrorPanel{KindInvalidRequest, "Invalid request", err.Error()}
	case errors.Is(err, profile.ErrNotFound):
		return http.StatusNotFound, ErrorPanel{KindNotFound, "User not found",
			"We couldn't find a GitHub user with that username. Check the spelling and try again."}
	case errors.As(err, &rle):
		return http.StatusTooManyRequests, ErrorPanel{KindRateLimited, "Rate limit reached", rle.Message}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorPanel{KindTimeout, "Request timed out",
			"The analysis took too long to complete. Please try again."}
	case errors.As(err, &ue):
		return http.StatusBadGateway, ErrorPanel{KindUpstream, "GitHub is unavailable",
			"We couldn't reach GitHub right now. Please try again shortly."}
	default:
		return http.StatusInternalServerError, ErrorPanel{KindInternal, "Something went wrong",
			"An unexpected error occurred. Please try again."}
	}
}

func writeError(c *fiber.Ctx, err error) error {
	status, panel := classify(err)
	return c.Status(status).JSON(ErrorResponse{Error: panel})
}
