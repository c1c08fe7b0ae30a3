// Package nearest moves the player: it asks the analysis service for the
// closest qualifying city inside a directional extent and waits for the
// job to finish.
package nearest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/wanderer/backend"
	"github.com/domino14/wanderer/city"
	"github.com/domino14/wanderer/geodesy"
	"github.com/domino14/wanderer/region"
)

// DefaultPollInterval is the wait between job status checks.
const DefaultPollInterval = 5 * time.Second

// DefaultMaxUnknownPolls is how many status checks in a row may come back
// Unknown before a poll gives up.
const DefaultMaxUnknownPolls = 60

// AnalysisClient is the part of the analysis service the runner needs.
type AnalysisClient interface {
	SubmitFindNearest(ctx context.Context, analysis, near backend.LayerFilter, extent region.Extent, maxCount int) (backend.Job, error)
	JobStatus(ctx context.Context, jobID string) (backend.JobStatus, error)
	JobResult(ctx context.Context, jobID string) (city.City, error)
}

// Runner submits find-nearest jobs and polls them to completion.
type Runner struct {
	client     AnalysisClient
	interval   time.Duration
	maxUnknown int
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewRunner creates a runner polling at the given interval.
func NewRunner(client AnalysisClient, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Runner{
		client:     client,
		interval:   interval,
		maxUnknown: DefaultMaxUnknownPolls,
		sleep:      sleepContext,
	}
}

// SetMaxUnknownPolls caps the consecutive Unknown statuses a poll puts up
// with. Zero or less means no cap.
func (r *Runner) SetMaxUnknownPolls(n int) {
	r.maxUnknown = n
}

// SetSleeper replaces the function used to wait between polls.
func (r *Runner) SetSleeper(sleep func(ctx context.Context, d time.Duration) error) {
	r.sleep = sleep
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Filters builds the layer filters for a move away from c: the analysis
// layer is every other city meeting the threshold, the near layer is c.
func Filters(layerURL string, c city.City, minPopulation int64) (analysis, near backend.LayerFilter) {
	analysis = backend.LayerFilter{
		URL: layerURL,
		Filter: fmt.Sprintf("%s AND %s <> %d",
			backend.PopulationAtLeast(minPopulation), backend.IDField, c.ID),
	}
	near = backend.LayerFilter{
		URL:    layerURL,
		Filter: fmt.Sprintf("%s = %d", backend.IDField, c.ID),
	}
	return analysis, near
}

// Submit starts a straight-line find-nearest job returning at most one
// city, restricted to extent.
func (r *Runner) Submit(ctx context.Context, analysis, near backend.LayerFilter, extent region.Extent) (backend.Job, error) {
	job, err := r.client.SubmitFindNearest(ctx, analysis, near, extent, 1)
	if err != nil {
		return backend.Job{}, fmt.Errorf("failed to submit job: %w", err)
	}
	log.Info().Str("job-id", job.ID).Stringer("status", job.Status).Msg("submitted find-nearest job")
	return job, nil
}

// PollUntilTerminal waits for job to leave the pending statuses. On success
// the result city is fetched and returned. A terminal failure is returned as
// a *JobError and is never retried. A status check that fails counts as
// Unknown and polling carries on, unless the service answered with an error
// document, which ends the poll. Too many Unknowns in a row also end it.
func (r *Runner) PollUntilTerminal(ctx context.Context, job backend.Job) (city.City, error) {
	status := job.Status
	unknowns := 0
	for status.Pending() {
		if err := r.sleep(ctx, r.interval); err != nil {
			return city.City{}, err
		}
		s, err := r.client.JobStatus(ctx, job.ID)
		if err != nil {
			if ctx.Err() != nil {
				return city.City{}, ctx.Err()
			}
			var se *backend.ServiceError
			if errors.As(err, &se) {
				return city.City{}, fmt.Errorf("failed to read status of job %s: %w", job.ID, err)
			}
			log.Warn().Err(err).Str("job-id", job.ID).Msg("could not read job status")
			s = backend.Unknown
		}
		log.Debug().Str("job-id", job.ID).Stringer("status", s).Msg("polled job")
		if s == backend.Unknown {
			unknowns++
			if r.maxUnknown > 0 && unknowns >= r.maxUnknown {
				return city.City{}, backend.QueryErrorf("job %s: no known status after %d checks", job.ID, unknowns)
			}
		} else {
			unknowns = 0
		}
		status = s
	}

	if status != backend.Succeeded {
		return city.City{}, &JobError{JobID: job.ID, Status: status}
	}
	c, err := r.client.JobResult(ctx, job.ID)
	if err != nil {
		return city.City{}, fmt.Errorf("failed to fetch result of job %s: %w", job.ID, err)
	}
	return c, nil
}

// FindNearest runs a whole move: it builds the extent for d, submits the job
// and waits for the next city. The city returned is never from and always
// meets minPopulation.
func (r *Runner) FindNearest(ctx context.Context, layerURL string, from city.City, minPopulation int64, d geodesy.Direction) (city.City, error) {
	extent, ok := region.BuildExtent(from, d)
	if !ok {
		return city.City{}, fmt.Errorf("not a direction: %q", d)
	}
	analysis, near := Filters(layerURL, from, minPopulation)
	job, err := r.Submit(ctx, analysis, near, extent)
	if err != nil {
		return city.City{}, err
	}
	next, err := r.PollUntilTerminal(ctx, job)
	if err != nil {
		return city.City{}, err
	}
	if next.ID == from.ID {
		return city.City{}, backend.QueryErrorf("job %s returned the current city", job.ID)
	}
	if !next.Qualifies(minPopulation) {
		return city.City{}, backend.QueryErrorf("job %s returned %v below population %d", job.ID, next, minPopulation)
	}
	if !extent.Contains(next.Point()) {
		log.Warn().Str("job-id", job.ID).Stringer("city", next).Msg("result lies outside the search extent")
	}
	return next, nil
}
