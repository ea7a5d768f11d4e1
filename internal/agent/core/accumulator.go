package core

import (
	"context"
	"strings"
)

// StreamAccumulator collects a token stream into a stage buffer while
// forwarding each surviving token to an optional sink.
type StreamAccumulator struct {
	sink TokenSink
}

// NewStreamAccumulator creates an accumulator with an optional sink. A nil
// sink accumulates silently.
func NewStreamAccumulator(sink TokenSink) *StreamAccumulator {
	return &StreamAccumulator{sink: sink}
}

// Accumulate drains tokens until the channel closes or the context is
// cancelled, and returns the concatenated buffer. Whitespace-only tokens are
// dropped entirely. Surviving tokens are forwarded to the sink before being
// appended, in arrival order, with no coalescing. A token carrying an error
// ends accumulation and returns the buffer built so far alongside the error.
func (a *StreamAccumulator) Accumulate(ctx context.Context, stage StageID, tokens <-chan StreamToken) (string, error) {
	var buf strings.Builder
	for {
		select {
		case tok, ok := <-tokens:
			if !ok {
				return buf.String(), nil
			}
			if tok.Err != nil {
				return buf.String(), tok.Err
			}
			if strings.TrimSpace(tok.Delta) == "" {
				continue
			}
			if a.sink != nil {
				a.sink(stage, tok.Delta)
			}
			buf.WriteString(tok.Delta)
		case <-ctx.Done():
			return buf.String(), ctx.Err()
		}
	}
}
