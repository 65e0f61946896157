// Package orchestrator runs the five report sections concurrently, contains
// failures per section, and reports each section as it settles.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/drpaneas/devgrowth/internal/analyzer"
	"github.com/drpaneas/devgrowth/internal/profile"
	"github.com/drpaneas/devgrowth/internal/report"
	"github.com/drpaneas/devgrowth/internal/summary"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidProfile is returned before any section starts when the profile
// cannot be analyzed.
var ErrInvalidProfile = errors.New("invalid profile")

// SectionAnalyzer produces the five report sections. *analyzer.Analyzer
// implements it.
type SectionAnalyzer interface {
	Strengths(ctx context.Context, in analyzer.Input) ([]string, error)
	AreasForImprovement(ctx context.Context, in analyzer.Input) ([]string, error)
	Recommendations(ctx context.Context, in analyzer.Input) ([]string, error)
	TechnicalAssessment(ctx context.Context, in analyzer.Input) (string, error)
	ProfileRating(ctx context.Context, in analyzer.Input) (report.Rating, error)
}

// UpdateFunc receives one Update per settled section. Calls are serialized,
// so a slow callback delays later updates but not the analyses themselves.
// A panic in the callback is logged and the run continues.
type UpdateFunc func(report.Update)

// Orchestrator is stateless between runs and safe for concurrent use.
type Orchestrator struct {
	sections  SectionAnalyzer
	overrides *report.Overrides
}

// New returns an Orchestrator. overrides may be nil.
func New(sections SectionAnalyzer, overrides *report.Overrides) *Orchestrator {
	return &Orchestrator{sections: sections, overrides: overrides}
}

type sectionState int

const (
	pending sectionState = iota
	filled
	fellBack
)

// run owns the report for a single analysis.
type run struct {
	log      *slog.Logger
	onUpdate UpdateFunc

	mu     sync.Mutex
	report *report.Report
	states map[report.Section]sectionState

	// emitMu serializes onUpdate calls without holding mu.
	emitMu sync.Mutex
}

// Run analyzes p. Once sections have started it always returns the fully
// settled report: a failed section holds its fallback content and the
// error is only logged. The returned error is non-nil only for profiles
// rejected up front.
func (o *Orchestrator) Run(ctx context.Context, p *profile.DeveloperProfile, onUpdate UpdateFunc) (*report.Report, error) {
	if p == nil || p.User.Username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidProfile)
	}

	r := &run{
		log:      slog.With("run_id", uuid.NewString(), "username", p.User.Username),
		onUpdate: onUpdate,
		report:   &report.Report{},
		states:   make(map[report.Section]sectionState, len(report.Sections)),
	}

	if fixed, ok := o.overrides.Lookup(p.User.Username); ok {
		r.log.Info("using fixed report override")
		for _, s := range report.Sections {
			r.settle(s, fixed.Value(s), nil)
		}
		return r.snapshot(), nil
	}

	in := analyzer.Input{Profile: p, Summaries: summary.Format(p)}
	tasks := map[report.Section]func(context.Context) (any, error){
		report.Strengths: func(ctx context.Context) (any, error) {
			return o.sections.Strengths(ctx, in)
		},
		report.AreasForImprovement: func(ctx context.Context) (any, error) {
			return o.sections.AreasForImprovement(ctx, in)
		},
		report.Recommendations: func(ctx context.Context) (any, error) {
			return o.sections.Recommendations(ctx, in)
		},
		report.TechnicalAssessment: func(ctx context.Context) (any, error) {
			return o.sections.TechnicalAssessment(ctx, in)
		},
		report.ProfileRating: func(ctx context.Context) (any, error) {
			return o.sections.ProfileRating(ctx, in)
		},
	}

	start := time.Now()
	r.log.Info("starting analysis", "repositories", len(p.Repositories))

	// Tasks never return an error to the group: each failure is settled
	// into its section's fallback, so no sibling is ever cancelled.
	var g errgroup.Group
	for _, s := range report.Sections {
		task := tasks[s]
		g.Go(func() error {
			v, err := runTask(ctx, s, task)
			r.settle(s, v, err)
			return nil
		})
	}
	_ = g.Wait()

	r.log.Info("analysis complete", "duration", time.Since(start).Round(time.Millisecond), "fallbacks", r.fallbacks())
	return r.snapshot(), nil
}

// runTask converts a panic in a section into an error so the section still settles.
func runTask(ctx context.Context, s report.Section, task func(context.Context) (any, error)) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s: panic: %v", s, p)
		}
	}()
	return task(ctx)
}

// settle moves s out of pending exactly once, substituting the fallback on
// error, and emits the update.
func (r *run) settle(s report.Section, v any, err error) {
	data, ok := r.record(s, v, err)
	if ok {
		r.emit(report.Update{Section: s, Data: data})
	}
}

// record stores the section result and returns a copy of the settled value.
func (r *run) record(s report.Section, v any, err error) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.states[s] != pending {
		r.log.Error("section settled twice", "section", s)
		return nil, false
	}
	state := filled
	if err == nil && !r.report.Set(s, v) {
		err = fmt.Errorf("%s: unexpected result type %T", s, v)
	}
	if err != nil {
		level := slog.LevelError
		if analyzer.IsSectionError(err) {
			level = slog.LevelWarn
		}
		r.log.Log(context.Background(), level, "section failed, using fallback", "section", s, "error", err)
		r.report.Set(s, report.Fallback(s))
		state = fellBack
	}
	r.states[s] = state
	return r.report.Clone().Value(s), true
}

func (r *run) emit(u report.Update) {
	if r.onUpdate == nil {
		return
	}
	r.emitMu.Lock()
	defer r.emitMu.Unlock()
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("update callback panicked", "section", u.Section, "panic", p)
		}
	}()
	r.onUpdate(u)
}

func (r *run) snapshot() *report.Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.report.Clone()
}

func (r *run) fallbacks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, st := range r.states {
		if st == fellBack {
			n++
		}
	}
	return n
}
