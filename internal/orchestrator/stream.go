package orchestrator

import "context"

// Stream runs Process and delivers its result as an ordered, finite,
// non-restartable sequence of chunks: a placeholder chunk first, then the
// final answer. chunks is closed when the sequence ends; the caller sees
// no chunks after that point.
//
// The underlying agent loop calls the LLM provider non-streaming
// (ChatWithTools/Chat), so "chunks" here means the placeholder-then-final
// shape the chat transport needs to overwrite a "thinking…" message, not
// token-level incremental delivery — a placeholder-send-then-edit pattern,
// since tool-calling turns don't have partial text to show until the loop
// concludes anyway.
func (o *Orchestrator) Stream(ctx context.Context, threadID, userMessage string, chunks chan<- string) error {
	defer close(chunks)

	select {
	case chunks <- "thinking…":
	case <-ctx.Done():
		return ctx.Err()
	}

	output, err := o.Process(ctx, threadID, userMessage)
	if err != nil {
		return err
	}

	select {
	case chunks <- output:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
