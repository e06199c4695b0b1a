package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlbot "github.com/kochurovskyi/sqlbot"
	"github.com/kochurovskyi/sqlbot/internal/memory"
	"github.com/kochurovskyi/sqlbot/internal/router"
)

type fixedAgent struct {
	output string
	err    error
}

func (a *fixedAgent) Name() string        { return "fixed" }
func (a *fixedAgent) Description() string { return "returns a fixed output or error" }
func (a *fixedAgent) Execute(ctx context.Context, _ sqlbot.AgentTask) (sqlbot.AgentResult, error) {
	if a.err != nil {
		return sqlbot.AgentResult{}, a.err
	}
	return sqlbot.AgentResult{Output: a.output}, nil
}

func allAgents(sqlQuery, csvExport, sqlRetrieval, offTopic sqlbot.Agent) map[router.Intent]sqlbot.Agent {
	return map[router.Intent]sqlbot.Agent{
		router.SQLQuery:     sqlQuery,
		router.CSVExport:    csvExport,
		router.SQLRetrieval: sqlRetrieval,
		router.OffTopic:     offTopic,
	}
}

func TestProcessDispatchesToOffTopicAndPersistsReply(t *testing.T) {
	store := memory.New(memory.Config{})
	defer store.Close()

	offTopic := &fixedAgent{output: "I'm a data bot!"}
	agents := allAgents(&fixedAgent{}, &fixedAgent{}, &fixedAgent{}, offTopic)
	o := New(store, agents, time.Second, nil)

	output, err := o.Process(context.Background(), "t1", "tell me a joke")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output != "I'm a data bot!" {
		t.Errorf("got %q", output)
	}

	messages := store.GetMessages("t1")
	if len(messages) != 2 {
		t.Fatalf("expected user+assistant messages persisted, got %d", len(messages))
	}
	if messages[0].Role != "user" || messages[1].Role != "assistant" {
		t.Errorf("unexpected roles: %+v", messages)
	}
	if messages[1].Content != "I'm a data bot!" {
		t.Errorf("unexpected assistant content: %+v", messages[1])
	}
}

func TestProcessDispatchesToSQLQueryByDefault(t *testing.T) {
	store := memory.New(memory.Config{})
	defer store.Close()

	sqlQuery := &fixedAgent{output: "49"}
	agents := allAgents(sqlQuery, &fixedAgent{}, &fixedAgent{}, &fixedAgent{})
	o := New(store, agents, time.Second, nil)

	output, err := o.Process(context.Background(), "t1", "how many apps do we have?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output != "49" {
		t.Errorf("got %q", output)
	}
}

func TestProcessOnAgentErrorPersistsFriendlyMessage(t *testing.T) {
	store := memory.New(memory.Config{})
	defer store.Close()

	failing := &fixedAgent{err: errors.New("boom")}
	agents := allAgents(failing, &fixedAgent{}, &fixedAgent{}, &fixedAgent{})
	o := New(store, agents, time.Second, nil)

	output, err := o.Process(context.Background(), "t1", "how many apps?")
	if err != nil {
		t.Fatalf("expected no Go error across the orchestrator boundary, got %v", err)
	}
	if output == "" {
		t.Error("expected a user-facing error message")
	}

	messages := store.GetMessages("t1")
	if len(messages) != 2 || messages[1].Content != output {
		t.Errorf("expected the error text to be persisted as the assistant reply, got %+v", messages)
	}
}

func TestProcessOnCancellationPersistsNothing(t *testing.T) {
	store := memory.New(memory.Config{})
	defer store.Close()

	cancelled := &fixedAgent{err: context.Canceled}
	agents := allAgents(cancelled, &fixedAgent{}, &fixedAgent{}, &fixedAgent{})
	o := New(store, agents, time.Second, nil)

	_, err := o.Process(context.Background(), "t1", "how many apps?")
	if err == nil {
		t.Fatal("expected an error for cancelled processing")
	}

	messages := store.GetMessages("t1")
	if len(messages) != 1 {
		t.Fatalf("expected only the user message persisted (no assistant reply), got %d messages", len(messages))
	}
}

func TestProcessFollowUpInheritsPreviousIntent(t *testing.T) {
	store := memory.New(memory.Config{})
	defer store.Close()

	sqlQuery := &fixedAgent{output: "49"}
	agents := allAgents(sqlQuery, &fixedAgent{}, &fixedAgent{}, &fixedAgent{})
	o := New(store, agents, time.Second, nil)

	if _, err := o.Process(context.Background(), "t1", "how many apps do we have?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sqlQuery.output = "21"
	output, err := o.Process(context.Background(), "t1", "what about iOS apps?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output != "21" {
		t.Errorf("expected the follow-up to route to SQL_QUERY again, got %q", output)
	}
}

func TestStreamSendsPlaceholderThenFinal(t *testing.T) {
	store := memory.New(memory.Config{})
	defer store.Close()

	offTopic := &fixedAgent{output: "done"}
	agents := allAgents(&fixedAgent{}, &fixedAgent{}, &fixedAgent{}, offTopic)
	o := New(store, agents, time.Second, nil)

	chunks := make(chan string, 4)
	if err := o.Stream(context.Background(), "t1", "hello", chunks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []string
	for c := range chunks {
		got = append(got, c)
	}
	if len(got) != 2 || got[0] != "thinking…" || got[1] != "done" {
		t.Errorf("got %+v", got)
	}
}

func TestNewPanicsWithoutFullAgentSet(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected New to panic with a missing agent")
		}
	}()
	store := memory.New(memory.Config{})
	defer store.Close()
	New(store, map[router.Intent]sqlbot.Agent{router.SQLQuery: &fixedAgent{}}, time.Second, nil)
}
