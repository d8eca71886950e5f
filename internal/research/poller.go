package research

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	// initialPollInterval is the first wait between status fetches.
	initialPollInterval = time.Second

	// pollBackoffFactor grows the wait after every fetch attempt.
	pollBackoffFactor = 1.5

	// DefaultMaxPollInterval caps the wait when none is configured.
	DefaultMaxPollInterval = 10 * time.Second
)

// Remote statuses that end polling.
const (
	remoteCompleted = "COMPLETED"
	remoteFailed    = "FAILED"
	remoteCancelled = "CANCELLED"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Poller recovers the result of an interaction whose stream ended without
// content by fetching its status with exponential backoff. Polling has no
// iteration cap; only a terminal remote status, a non-transient error or
// context cancellation stops it.
type Poller struct {
	client      Client
	maxInterval time.Duration
	sleep       SleepFunc
	obs         Observer
	logger      *slog.Logger
}

// NewPoller creates a poller. maxInterval is floored at the initial
// interval.
func NewPoller(
	client Client,
	maxInterval time.Duration,
	sleep SleepFunc,
	obs Observer,
	logger *slog.Logger,
) *Poller {
	if maxInterval < initialPollInterval {
		maxInterval = initialPollInterval
	}
	if sleep == nil {
		sleep = sleepContext
	}
	if obs == nil {
		obs = NopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		client:      client,
		maxInterval: maxInterval,
		sleep:       sleep,
		obs:         obs,
		logger:      logger,
	}
}

// Poll fetches the interaction until it reaches a terminal status and
// appends any recovered output to acc. It returns the accumulated text,
// which may be empty even for a COMPLETED interaction.
func (p *Poller) Poll(ctx context.Context, interactionID string, acc *Accumulator) (string, error) {
	p.obs.Progress(fmt.Sprintf(
		"Stream ended without report. Polling interaction %s...", interactionID))

	interval := initialPollInterval
	lastStatus := ""

	for {
		snapshot, err := p.client.GetInteraction(ctx, interactionID)
		if err != nil {
			if ctx.Err() != nil {
				return acc.Text(), ctx.Err()
			}
			if !IsTransient(err) {
				return acc.Text(), fmt.Errorf("polling interaction %s: %w", interactionID, err)
			}

			p.logger.Warn("transient polling error",
				"interaction_id", interactionID, "error", err, "retry_in", interval)
			p.obs.Retrying(err, interval)
			if err := p.sleep(ctx, interval); err != nil {
				return acc.Text(), err
			}
			interval = p.next(interval)
			continue
		}

		status := snapshot.NormalizedStatus()
		if status != lastStatus {
			p.obs.PollStatus(status)
			lastStatus = status
		}
		p.logger.Debug("polled interaction",
			"interaction_id", interactionID, "status", status, "interval", interval)

		switch status {
		case remoteCompleted:
			for _, out := range snapshot.Outputs {
				acc.Append(out.Text)
			}
			if acc.Empty() && snapshot.Response != nil {
				acc.Append(snapshot.Response.Text)
			}
			return acc.Text(), nil
		case remoteFailed, remoteCancelled:
			return acc.Text(), nil
		}

		if err := p.sleep(ctx, interval); err != nil {
			return acc.Text(), err
		}
		interval = p.next(interval)
	}
}

// next grows the interval by the backoff factor, capped at maxInterval.
func (p *Poller) next(interval time.Duration) time.Duration {
	grown := time.Duration(float64(interval) * pollBackoffFactor)
	if grown > p.maxInterval {
		return p.maxInterval
	}
	return grown
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
