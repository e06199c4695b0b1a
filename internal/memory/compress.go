package memory

// estimateTokens approximates token count the way the cheapest possible
// heuristic can: four characters per token. Good enough to decide when to
// compress, not meant to match any real tokenizer.
func estimateTokens(content string) int {
	return len(content) / 4
}

func totalTokens(messages []Message) int {
	total := 0
	for _, m := range messages {
		total += estimateTokens(m.Content)
	}
	return total
}

// trimAndCompress enforces the Memory Store's two bounds in order:
//  1. token-bounded compression — once the estimated token count crosses
//     MaxConversationTokens*CompressionTriggerRatio, every message except the
//     last KeepRecentMessages collapses into system-summary messages, one per
//     (user, assistant) pair.
//  2. message-count bound — if the thread still exceeds MaxMessagesPerThread
//     after compression, the oldest messages are front-trimmed.
func trimAndCompress(messages []Message, cfg Config) []Message {
	threshold := float64(cfg.MaxConversationTokens) * cfg.CompressionTriggerRatio
	if cfg.MaxConversationTokens > 0 && float64(totalTokens(messages)) > threshold {
		messages = compress(messages, cfg.KeepRecentMessages)
	}

	if cfg.MaxMessagesPerThread > 0 && len(messages) > cfg.MaxMessagesPerThread {
		excess := len(messages) - cfg.MaxMessagesPerThread
		messages = messages[excess:]
	}

	return messages
}

// compress replaces every message but the last keepRecent with a sequence
// of fixed-shape system-summary messages, one per (user, assistant) pair,
// in walk order. An unpaired trailing message becomes a single-sided
// summary. Already-summarized messages from an earlier compression pass
// are walked the same way, so repeated compressions keep collapsing pairs
// rather than growing unbounded.
func compress(messages []Message, keepRecent int) []Message {
	if keepRecent < 0 {
		keepRecent = 0
	}
	if len(messages) <= keepRecent {
		return messages
	}

	splitAt := len(messages) - keepRecent
	old := messages[:splitAt]
	recent := messages[splitAt:]

	summaries := make([]Message, 0, len(old)/2+1)
	for i := 0; i < len(old); i += 2 {
		if i+1 < len(old) {
			summaries = append(summaries, pairSummary(old[i], old[i+1]))
		} else {
			summaries = append(summaries, oneSidedSummary(old[i]))
		}
	}

	out := make([]Message, 0, len(summaries)+len(recent))
	out = append(out, summaries...)
	out = append(out, recent...)
	return out
}

func truncate100(s string) string {
	if len(s) > 100 {
		return s[:100]
	}
	return s
}

// pairSummary renders "User asked: {100 chars}... Response: {100 chars}..."
// per the compression format's fixed shape.
func pairSummary(left, right Message) Message {
	content := "User asked: " + truncate100(left.Content) + "... Response: " + truncate100(right.Content) + "..."
	m := Message{Role: "system-summary", Content: content}
	if !left.CreatedAt.IsZero() {
		m.CreatedAt = left.CreatedAt
	}
	return m
}

func oneSidedSummary(m Message) Message {
	content := "User asked: " + truncate100(m.Content) + "..."
	out := Message{Role: "system-summary", Content: content}
	if !m.CreatedAt.IsZero() {
		out.CreatedAt = m.CreatedAt
	}
	return out
}
