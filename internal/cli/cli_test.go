package cli

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/research-cli/internal/credential"
	"github.com/nhle/research-cli/internal/gemini"
	"github.com/nhle/research-cli/internal/model"
	"github.com/nhle/research-cli/internal/research"
	"github.com/nhle/research-cli/internal/store"
)

// fakeClient streams a fixed set of events.
type fakeClient struct {
	events   []gemini.Event
	streamFn func(ctx context.Context) error

	lastInteraction gemini.InteractionRequest
	lastGenerate    gemini.GenerateRequest
}

func (f *fakeClient) seq(ctx context.Context) iter.Seq2[gemini.Event, error] {
	return func(yield func(gemini.Event, error) bool) {
		for _, ev := range f.events {
			if !yield(ev, nil) {
				return
			}
		}
		if f.streamFn != nil {
			if err := f.streamFn(ctx); err != nil {
				yield(gemini.Event{}, err)
			}
		}
	}
}

func (f *fakeClient) CreateInteraction(ctx context.Context, req gemini.InteractionRequest) (iter.Seq2[gemini.Event, error], error) {
	f.lastInteraction = req
	return f.seq(ctx), nil
}

func (f *fakeClient) GetInteraction(context.Context, string) (*gemini.Interaction, error) {
	return &gemini.Interaction{Status: "FAILED"}, nil
}

func (f *fakeClient) GenerateContentStream(ctx context.Context, req gemini.GenerateRequest) (iter.Seq2[gemini.Event, error], error) {
	f.lastGenerate = req
	return f.seq(ctx), nil
}

type harness struct {
	t         *testing.T
	deps      *Deps
	out       *bytes.Buffer
	client    *fakeClient
	ring      *keyring.ArrayKeyring
	env       map[string]string
	workspace string
	clientErr error
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dir := t.TempDir()
	workspace := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("workspace: "+workspace+"\n"), 0o600))

	h := &harness{
		t:         t,
		out:       &bytes.Buffer{},
		client:    &fakeClient{},
		ring:      keyring.NewArrayKeyring(nil),
		env:       map[string]string{"GEMINI_API_KEY": "test-key"},
		workspace: workspace,
	}
	h.deps = &Deps{
		Stdin:     strings.NewReader(""),
		Stdout:    h.out,
		Stderr:    h.out,
		Width:     80,
		Getenv:    func(k string) string { return h.env[k] },
		ConfigDir: dir,
		OpenStore: func(path string) (store.Store, error) {
			return store.NewSQLiteStore(path)
		},
		Credentials: func(string) *credential.Store {
			return credential.NewStoreWith(h.ring)
		},
		NewClients: func(apiKey, _ string) research.ClientFactory {
			return func(research.ClientOptions) (research.Client, error) {
				if h.clientErr != nil {
					return nil, h.clientErr
				}
				return h.client, nil
			}
		},
	}
	return h
}

func (h *harness) run(ctx context.Context, args ...string) error {
	h.t.Helper()
	cmd := NewRootCommand("test", h.deps)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func (h *harness) tasks() []model.Task {
	h.t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(h.deps.ConfigDir, "history.db"))
	require.NoError(h.t, err)
	defer st.Close()

	tasks, err := st.RecentTasks(context.Background(), 100)
	require.NoError(h.t, err)
	return tasks
}

func textEvent(s string) gemini.Event {
	return gemini.Event{Content: &gemini.Content{Parts: []gemini.Part{{Text: s}}}}
}

func TestRouteArgs(t *testing.T) {
	tests := []struct {
		binary string
		args   []string
		want   []string
	}{
		{"research", []string{"hello"}, []string{"hello"}},
		{"think", []string{"hello"}, []string{"think", "hello"}},
		{"think", []string{"list"}, []string{"list"}},
		{"think", []string{"--help"}, []string{"--help"}},
		{"think", nil, nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, routeArgs(tt.binary, tt.args), "%s %v", tt.binary, tt.args)
	}
}

func TestRunCompletesAndSavesReport(t *testing.T) {
	h := newHarness(t)
	h.client.events = []gemini.Event{
		{Interaction: &gemini.InteractionRef{ID: "int_1"}},
		textEvent("# Findings\n\nAll good."),
	}

	err := h.run(context.Background(), "run", "--parent", "int_0", "-o", "out.md", "what", "is", "new")
	require.NoError(t, err)

	assert.Equal(t, "what is new", h.client.lastInteraction.Input)
	assert.Equal(t, "int_0", h.client.lastInteraction.PreviousInteractionID)
	assert.Equal(t, model.DefaultModel, h.client.lastInteraction.Agent)
	assert.Contains(t, h.out.String(), "All good.")
	assert.Contains(t, h.out.String(), "Report saved to")

	data, err := os.ReadFile(filepath.Join(h.workspace, "out.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Findings\n\nAll good.", string(data))

	tasks := h.tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, model.StatusCompleted, tasks[0].Status)
	assert.Equal(t, "int_1", tasks[0].InteractionIDText())
}

func TestRunRejectsOutputOutsideWorkspace(t *testing.T) {
	h := newHarness(t)
	h.client.events = []gemini.Event{textEvent("report")}

	err := h.run(context.Background(), "run", "-o", "../escape.md", "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside the workspace")
}

func TestBareQueryRunsResearch(t *testing.T) {
	h := newHarness(t)
	h.client.events = []gemini.Event{textEvent("done")}

	require.NoError(t, h.run(context.Background(), "tell me"))
	assert.Equal(t, "tell me", h.client.lastInteraction.Input)
}

func TestThink(t *testing.T) {
	h := newHarness(t)
	h.client.events = []gemini.Event{{Thought: "hmm"}, textEvent("Because.")}

	require.NoError(t, h.run(context.Background(), "think", "--model", "thinker", "why"))
	assert.Equal(t, "thinker", h.client.lastGenerate.Model)
	assert.Equal(t, "why", h.client.lastGenerate.Prompt)
	assert.Contains(t, h.out.String(), "Because.")

	tasks := h.tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "thinker", tasks[0].Model)
}

func TestRunWithoutQueryShowsHelp(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(context.Background(), "run"))
	assert.Contains(t, h.out.String(), "Start a deep research task")
	assert.Empty(t, h.tasks())
}

func TestRunWithoutAPIKey(t *testing.T) {
	h := newHarness(t)
	h.env = map[string]string{}

	err := h.run(context.Background(), "run", "q")
	assert.ErrorIs(t, err, credential.ErrNoAPIKey)
	assert.Empty(t, h.tasks(), "no task is created without credentials")
}

func TestRunUsesKeyringKey(t *testing.T) {
	h := newHarness(t)
	h.env = map[string]string{}
	require.NoError(t, h.ring.Set(keyring.Item{Key: credential.APIKeyName, Data: []byte("stored")}))
	h.client.events = []gemini.Event{textEvent("ok")}

	require.NoError(t, h.run(context.Background(), "run", "q"))
}

func TestRunClientInitFailure(t *testing.T) {
	h := newHarness(t)
	h.clientErr = errors.New("bad key")

	err := h.run(context.Background(), "run", "q")
	var silent *silentError
	require.ErrorAs(t, err, &silent)
	assert.True(t, research.IsSetupError(err))
	assert.Contains(t, h.out.String(), research.MsgClientInit)

	tasks := h.tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, model.StatusError, tasks[0].Status)
}

func TestRunExecutionFailureExitsCleanly(t *testing.T) {
	h := newHarness(t)
	h.client.streamFn = func(context.Context) error { return errors.New("stream broke") }

	require.NoError(t, h.run(context.Background(), "run", "q"))
	assert.Contains(t, h.out.String(), "Research execution failed: stream broke")
	assert.Equal(t, model.StatusError, h.tasks()[0].Status)
}

func TestRunCancelled(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.client.events = []gemini.Event{{Interaction: &gemini.InteractionRef{ID: "int_c"}}}
	h.client.streamFn = func(streamCtx context.Context) error {
		cancel()
		return streamCtx.Err()
	}

	require.NoError(t, h.run(ctx, "run", "q"))
	assert.Contains(t, h.out.String(), msgCancelled)
	assert.False(t, h.tasks()[0].Status.IsTerminal())
}

func TestListAndShow(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(context.Background(), "list"))
	assert.Contains(t, h.out.String(), "No research tasks found in history.")

	h.client.events = []gemini.Event{textEvent("Stored report body")}
	require.NoError(t, h.run(context.Background(), "run", "first query"))

	h.out.Reset()
	require.NoError(t, h.run(context.Background(), "list"))
	assert.Contains(t, h.out.String(), "first query")
	assert.Contains(t, h.out.String(), "COMPLETED")

	id := h.tasks()[0].ID
	h.out.Reset()
	require.NoError(t, h.run(context.Background(), "show", itoa(id), "-o", "copy.md"))
	assert.Contains(t, h.out.String(), "first query")
	assert.Contains(t, h.out.String(), "Stored report body")
	assert.FileExists(t, filepath.Join(h.workspace, "copy.md"))

	err := h.run(context.Background(), "show", "999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task 999 not found")

	assert.Error(t, h.run(context.Background(), "show", "abc"))
}

func TestShowWithoutReport(t *testing.T) {
	h := newHarness(t)
	h.client.events = []gemini.Event{{Thought: "nothing else"}}
	require.NoError(t, h.run(context.Background(), "run", "empty"))

	h.out.Reset()
	require.NoError(t, h.run(context.Background(), "show", itoa(h.tasks()[0].ID)))
	assert.Contains(t, h.out.String(), "No report content available for this task.")
}

func TestAuth(t *testing.T) {
	h := newHarness(t)
	h.env = map[string]string{}

	require.NoError(t, h.run(context.Background(), "auth", "status"))
	assert.Contains(t, h.out.String(), "Not logged in.")

	h.deps.Stdin = strings.NewReader("secret-key-1234\n")
	require.NoError(t, h.run(context.Background(), "auth", "login"))

	h.out.Reset()
	require.NoError(t, h.run(context.Background(), "auth", "status"))
	assert.Contains(t, h.out.String(), "1234")
	assert.NotContains(t, h.out.String(), "secret-key")
	assert.Contains(t, h.out.String(), "keyring")

	require.NoError(t, h.run(context.Background(), "auth", "logout"))
	_, err := h.ring.Get(credential.APIKeyName)
	assert.ErrorIs(t, err, keyring.ErrKeyNotFound)
}

func TestAuthLoginRejectsEmptyKey(t *testing.T) {
	h := newHarness(t)
	h.deps.Stdin = strings.NewReader("\n")

	assert.Error(t, h.run(context.Background(), "auth", "login"))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
