// Package research drives a single remote research or think interaction
// from submission to a terminal task record. A run streams events,
// records the announced interaction in the background, falls back to
// polling when the stream ends without content and finally persists
// exactly one terminal status.
package research

//go:generate mockgen -source=agent.go -destination=mock_client_test.go -package=research

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/research-cli/internal/gemini"
	"github.com/nhle/research-cli/internal/model"
	"github.com/nhle/research-cli/internal/store"
)

const (
	researchAgentType = "deep-research"
	thinkingSummaries = "auto"

	// MsgNoContent is shown when a run ends without any report text.
	MsgNoContent = "No content received."
)

// Client is the remote capability a run needs. *gemini.Client implements
// it.
type Client interface {
	CreateInteraction(ctx context.Context, req gemini.InteractionRequest) (iter.Seq2[gemini.Event, error], error)
	GetInteraction(ctx context.Context, id string) (*gemini.Interaction, error)
	GenerateContentStream(ctx context.Context, req gemini.GenerateRequest) (iter.Seq2[gemini.Event, error], error)
}

// ClientOptions are the per-run settings handed to a ClientFactory.
type ClientOptions struct {
	APIVersion string
	// Timeout bounds each request. Zero means no limit.
	Timeout time.Duration
}

// ClientFactory constructs the remote client for one run. A failure is a
// setup error.
type ClientFactory func(opts ClientOptions) (Client, error)

// NewGeminiFactory returns a factory building Gemini REST clients.
func NewGeminiFactory(apiKey, baseURL string) ClientFactory {
	return func(opts ClientOptions) (Client, error) {
		c, err := gemini.New(apiKey,
			gemini.WithBaseURL(baseURL),
			gemini.WithAPIVersion(opts.APIVersion),
			gemini.WithTimeout(opts.Timeout),
		)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// Config holds the settings a run consumes.
type Config struct {
	// PollInterval is the ceiling of the polling backoff.
	PollInterval time.Duration
	Verbose      bool
	Tools        model.ToolsConfig
	MCPServers   []string
	APIVersion   string
	// WriteWorkers bounds concurrent background task writes.
	WriteWorkers int
}

// ConfigFromApp maps the application configuration onto a run Config.
func ConfigFromApp(cfg *model.AppConfig) Config {
	return Config{
		PollInterval: time.Duration(model.ClampPollInterval(cfg.PollInterval) * float64(time.Second)),
		Verbose:      cfg.Verbose,
		Tools:        cfg.Tools,
		MCPServers:   cfg.MCPServers,
		APIVersion:   cfg.APIVersion,
	}
}

// ResearchRequest starts a background deep-research interaction.
type ResearchRequest struct {
	Query string
	Model string
	// ParentID continues a previous interaction.
	ParentID string
}

// ThinkRequest runs a streamed generation with thought summaries.
type ThinkRequest struct {
	Query      string
	Model      string
	APIVersion string
	Timeout    time.Duration
}

// Outcome describes how a run ended. Report is empty unless Status is
// COMPLETED.
type Outcome struct {
	TaskID        int64
	Status        model.Status
	Report        string
	InteractionID string
}

// Agent runs research and think interactions against a remote client and
// keeps the task store in step.
type Agent struct {
	store     store.Store
	newClient ClientFactory
	cfg       Config
	obs       Observer
	logger    *slog.Logger
	sleep     SleepFunc
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithObserver sets the receiver of user-facing progress.
func WithObserver(obs Observer) AgentOption {
	return func(a *Agent) {
		if obs != nil {
			a.obs = obs
		}
	}
}

func WithLogger(l *slog.Logger) AgentOption {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithSleep replaces the backoff sleep. Tests use it to record intervals.
func WithSleep(fn SleepFunc) AgentOption {
	return func(a *Agent) {
		if fn != nil {
			a.sleep = fn
		}
	}
}

// NewAgent creates an Agent.
func NewAgent(s store.Store, factory ClientFactory, cfg Config, opts ...AgentOption) *Agent {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultMaxPollInterval
	}
	a := &Agent{
		store:     s,
		newClient: factory,
		cfg:       cfg,
		obs:       NopObserver{},
		logger:    slog.Default(),
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// run is the shape shared by research and think runs.
type run struct {
	kind       Kind
	query      string
	model      string
	parentID   string
	clientOpts ClientOptions
	failureMsg string
	poll       bool
	open       func(ctx context.Context, c Client) (iter.Seq2[gemini.Event, error], error)
}

// RunResearch submits req as a background research interaction.
//
// Only a client construction failure is returned as an error (an *Error).
// Execution failures are recorded as ERROR on the task and reported
// through the observer; the Outcome then carries no report. A cancelled
// ctx returns ctx.Err() and leaves the task without a terminal status.
func (a *Agent) RunResearch(ctx context.Context, req ResearchRequest) (*Outcome, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = model.DefaultModel
	}
	tools := BuildTools(a.cfg.Tools, a.cfg.MCPServers)

	return a.execute(ctx, run{
		kind:       KindResearch,
		query:      req.Query,
		model:      modelName,
		parentID:   req.ParentID,
		clientOpts: ClientOptions{APIVersion: a.cfg.APIVersion},
		failureMsg: MsgResearchFailed,
		poll:       true,
		open: func(ctx context.Context, c Client) (iter.Seq2[gemini.Event, error], error) {
			return c.CreateInteraction(ctx, gemini.InteractionRequest{
				Agent:      modelName,
				Input:      req.Query,
				Background: true,
				AgentConfig: &gemini.AgentConfig{
					Type:              researchAgentType,
					ThinkingSummaries: thinkingSummaries,
				},
				Tools:                 tools,
				PreviousInteractionID: req.ParentID,
			})
		},
	})
}

// RunThink streams a generation with thought summaries. No interaction is
// announced on this path, so an empty stream ends as FAILED without
// polling. Errors follow RunResearch.
func (a *Agent) RunThink(ctx context.Context, req ThinkRequest) (*Outcome, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = model.DefaultThinkModel
	}
	apiVersion := req.APIVersion
	if apiVersion == "" {
		apiVersion = a.cfg.APIVersion
	}
	tools := BuildTools(a.cfg.Tools, nil)

	return a.execute(ctx, run{
		kind:       KindThink,
		query:      req.Query,
		model:      modelName,
		clientOpts: ClientOptions{APIVersion: apiVersion, Timeout: req.Timeout},
		failureMsg: MsgThinkFailed,
		open: func(ctx context.Context, c Client) (iter.Seq2[gemini.Event, error], error) {
			return c.GenerateContentStream(ctx, gemini.GenerateRequest{
				Model:  modelName,
				Prompt: req.Query,
				Tools:  tools,
			})
		},
	})
}

func (a *Agent) execute(ctx context.Context, r run) (*Outcome, error) {
	log := a.logger.With("run_id", uuid.NewString(), "kind", string(r.kind))

	// The record exists before any remote call so failures leave a trail.
	taskID, err := a.store.CreateTask(ctx, r.query, r.model, r.parentID)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	log = log.With("task_id", taskID)
	out := &Outcome{TaskID: taskID, Status: model.StatusPending}

	client, err := a.newClient(r.clientOpts)
	if err != nil {
		log.Error("client initialization failed", "error", err)
		a.obs.Error(MsgClientInit, err)
		if werr := a.finish(ctx, out, model.StatusError, MsgClientInit, ""); werr != nil {
			log.Error("recording client failure", "error", werr)
			a.obs.Warn(werr.Error())
		}
		return out, &Error{Message: MsgClientInit, Err: err}
	}

	log.Info("run started", "model", r.model)
	a.obs.Started(r.kind, r.query, r.model)

	acc := NewAccumulator()
	writes := newBackgroundWrites(a.store, a.cfg.WriteWorkers)

	err = a.stream(ctx, log, client, r, acc, writes, taskID)

	// Barrier: background writes land before any terminal write.
	writeErrs := writes.Wait()
	if ctx.Err() != nil {
		log.Info("run cancelled", "interaction_id", acc.InteractionID())
		out.InteractionID = acc.InteractionID()
		return out, ctx.Err()
	}
	for _, werr := range writeErrs {
		log.Warn("background task update failed", "error", werr)
		a.obs.Warn(fmt.Sprintf("Failed to record progress: %v", werr))
	}

	if err == nil && r.poll && acc.Empty() && acc.InteractionID() != "" {
		poller := NewPoller(client, a.cfg.PollInterval, a.sleep, a.obs, log)
		_, err = poller.Poll(ctx, acc.InteractionID(), acc)
	}

	out.InteractionID = acc.InteractionID()

	if err != nil {
		if ctx.Err() != nil {
			log.Info("run cancelled", "interaction_id", out.InteractionID)
			return out, ctx.Err()
		}
		log.Error("run failed", "error", err, "interaction_id", out.InteractionID)
		a.obs.Error(r.failureMsg, err)
		if werr := a.finish(ctx, out, model.StatusError, r.failureMsg, out.InteractionID); werr != nil {
			return out, werr
		}
		return out, nil
	}

	if acc.Empty() {
		log.Warn("run finished without content", "interaction_id", out.InteractionID)
		if werr := a.finish(ctx, out, model.StatusFailed, "", out.InteractionID); werr != nil {
			return out, werr
		}
		a.obs.Failed(MsgNoContent)
		return out, nil
	}

	report := acc.Text()
	if werr := a.finish(ctx, out, model.StatusCompleted, report, out.InteractionID); werr != nil {
		return out, werr
	}
	out.Report = report
	log.Info("run completed", "interaction_id", out.InteractionID, "report_bytes", len(report))
	a.obs.Report(report)
	return out, nil
}

// stream consumes the event sequence into acc. The first announced
// interaction is recorded as IN_PROGRESS in the background.
func (a *Agent) stream(
	ctx context.Context,
	log *slog.Logger,
	client Client,
	r run,
	acc *Accumulator,
	writes *backgroundWrites,
	taskID int64,
) error {
	a.obs.Progress("Starting...")

	events, err := r.open(ctx, client)
	if err != nil {
		return err
	}
	if events == nil {
		return errors.New("remote returned no event stream")
	}

	for ev, err := range events {
		if err != nil {
			return err
		}

		u := acc.Apply(ev)
		if u.NewInteractionID != "" {
			id := u.NewInteractionID
			log.Info("interaction announced", "interaction_id", id)
			writes.Update(ctx, taskID, store.TaskUpdate{
				Status:        model.StatusInProgress,
				InteractionID: &id,
			})
			a.obs.Progress(fmt.Sprintf("Interaction %s started", id))
		}
		if u.Thought != "" {
			a.obs.Progress(u.Thought)
			if a.cfg.Verbose {
				a.obs.Thought(u.Thought)
			}
		}
		if u.Fragments > 0 {
			log.Debug("content received", "fragments", u.Fragments)
		}
	}

	return ctx.Err()
}

// finish writes the terminal status. An empty report leaves the stored
// report untouched.
func (a *Agent) finish(
	ctx context.Context,
	out *Outcome,
	status model.Status,
	report, interactionID string,
) error {
	upd := store.TaskUpdate{Status: status}
	if report != "" {
		upd.Report = &report
	}
	if interactionID != "" {
		upd.InteractionID = &interactionID
	}
	if err := a.store.UpdateTask(ctx, out.TaskID, upd); err != nil {
		return fmt.Errorf("recording %s for task %d: %w", status, out.TaskID, err)
	}
	out.Status = status
	return nil
}
