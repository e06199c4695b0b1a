// Package orchestrator implements the single entry point per inbound
// message: load history, classify intent, dispatch to the selected agent,
// stream chunks outward, and persist the assistant reply and any
// SQL/results produced.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	sqlbot "github.com/kochurovskyi/sqlbot"
	"github.com/kochurovskyi/sqlbot/internal/memory"
	"github.com/kochurovskyi/sqlbot/internal/router"
)

// HistoryWindow bounds how many of a thread's messages are handed to an
// agent as reasoning context. The SQL-Query agent's prompt reasons over
// "the last 3 history turns"; we hand every agent a slightly wider window
// so CSV-Export/SQL-Retrieval prompts that reference "this" or "that"
// still have enough context, while staying well under
// MAX_MESSAGES_PER_THREAD.
const HistoryWindow = 6

// Orchestrator is the process-global dispatcher. One instance serves every
// thread; per-thread serialization is the Memory Store's responsibility,
// not this type's.
type Orchestrator struct {
	store          *memory.Store
	agents         map[router.Intent]sqlbot.Agent
	messageTimeout time.Duration
	logger         *slog.Logger

	mu         sync.Mutex
	lastIntent map[string]router.Intent
}

// New constructs an Orchestrator. agents must have an entry for every
// router.Intent value; New panics if one is missing, since a dispatch with
// no agent is a configuration error, not a runtime condition to recover
// from.
func New(store *memory.Store, agents map[router.Intent]sqlbot.Agent, messageTimeout time.Duration, logger *slog.Logger) *Orchestrator {
	for _, intent := range []router.Intent{router.SQLQuery, router.CSVExport, router.SQLRetrieval, router.OffTopic} {
		if _, ok := agents[intent]; !ok {
			panic("orchestrator: missing agent for intent " + string(intent))
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:          store,
		agents:         agents,
		messageTimeout: messageTimeout,
		logger:         logger,
		lastIntent:     make(map[string]router.Intent),
	}
}

// Process runs the full per-message algorithm and returns the final
// response text. It never returns a Go error for an agent/tool failure —
// those become user-facing text per the error-handling design's
// propagation policy — except when processing is cancelled before any
// reply could be produced, in which case no assistant message is
// persisted and the context error is returned. A panic during processing is
// recovered and handled like any other agent error.
func (o *Orchestrator) Process(ctx context.Context, threadID, userMessage string) (reply string, err error) {
	messageID := sqlbot.NewID()
	log := o.logger.With("thread_id", threadID, "message_id", messageID)

	defer func() {
		if r := recover(); r != nil {
			reply, err = o.fail(threadID, log, fmt.Errorf("panic: %v", r))
		}
	}()

	o.store.AddUserMessage(threadID, userMessage)
	history := o.store.GetMessages(threadID)

	classification := router.Classify(userMessage, o.routerHistory(threadID, history))
	log.Info("classified intent", "intent", classification.Intent, "confidence", classification.Confidence)

	agent, ok := o.agents[classification.Intent]
	if !ok {
		// Unreachable given New's invariant check, but guarded rather than
		// indexed blindly since a nil Agent would panic deep in dispatch.
		return o.fail(threadID, log, errors.New("no agent registered for intent "+string(classification.Intent)))
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if o.messageTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, o.messageTimeout)
		defer cancel()
	}

	task := sqlbot.AgentTask{
		Input:   userMessage,
		History: asChatMessages(recentWindow(history, HistoryWindow)),
		Context: map[string]string{"thread_id": threadID, "message_id": messageID},
	}

	result, err := agent.Execute(runCtx, task)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Transport closed mid-flight: no assistant message is
			// persisted.
			log.Warn("processing cancelled", "error", err)
			return "", err
		}
		// context.DeadlineExceeded (the per-message liveness bound) and
		// every other agent error are terminal failures: the orchestrator
		// still writes a user-facing assistant message.
		return o.fail(threadID, log, err)
	}

	o.store.AddAssistantMessage(threadID, result.Output)
	o.setLastIntent(threadID, classification.Intent)

	log.Info("processed message", "agent", agent.Name(), "output_len", len(result.Output))
	return result.Output, nil
}

// fail converts an error into user-facing text, persists it as the
// assistant's reply (so every persisted assistant message still has a
// known producer agent), and returns it with a nil error — errors never
// cross the orchestrator boundary as Go errors once a reply has begun.
func (o *Orchestrator) fail(threadID string, log *slog.Logger, err error) (string, error) {
	text := userFacingError(err)
	log.Error("message processing failed", "error", err)
	o.store.AddAssistantMessage(threadID, text)
	return text, nil
}

// userFacingError maps an internal error to user-facing text: a timeout
// message for context.DeadlineExceeded, otherwise a generic "something went
// wrong" message. Specific categories (Validation, Generation, Execution)
// have already been converted to plain text by the tool layer before
// reaching this boundary.
func userFacingError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "Sorry, that took too long to process. Please try again."
	}
	return "Something went wrong while processing your request. Please try again."
}

func (o *Orchestrator) routerHistory(threadID string, history []memory.Message) router.History {
	var lastAssistant string
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "assistant" {
			lastAssistant = history[i].Content
			break
		}
	}

	o.mu.Lock()
	lastIntent := o.lastIntent[threadID]
	o.mu.Unlock()

	return router.History{LastAssistantMessage: lastAssistant, LastIntent: lastIntent}
}

func (o *Orchestrator) setLastIntent(threadID string, intent router.Intent) {
	o.mu.Lock()
	o.lastIntent[threadID] = intent
	o.mu.Unlock()
}

func recentWindow(history []memory.Message, n int) []memory.Message {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

func asChatMessages(history []memory.Message) []sqlbot.ChatMessage {
	out := make([]sqlbot.ChatMessage, 0, len(history))
	for _, m := range history {
		role := m.Role
		if role == "system-summary" {
			role = "system"
		}
		out = append(out, sqlbot.ChatMessage{Role: role, Content: m.Content})
	}
	return out
}
