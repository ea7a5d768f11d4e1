package core

import (
	"context"
	"testing"
)

func streamOf(tokens ...StreamToken) <-chan StreamToken {
	ch := make(chan StreamToken, len(tokens))
	for _, t := range tokens {
		ch <- t
	}
	close(ch)
	return ch
}

func TestAccumulateConcatenatesInOrder(t *testing.T) {
	acc := NewStreamAccumulator(nil)
	got, err := acc.Accumulate(context.Background(), StagePlan, streamOf(
		StreamToken{Delta: "1. Search"},
		StreamToken{Delta: " for"},
		StreamToken{Delta: " sources"},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "1. Search for sources" {
		t.Fatalf("unexpected buffer: %q", got)
	}
}

func TestAccumulateDropsWhitespaceOnlyTokens(t *testing.T) {
	var seen []string
	acc := NewStreamAccumulator(func(stage StageID, delta string) {
		seen = append(seen, delta)
	})
	got, err := acc.Accumulate(context.Background(), StagePlan, streamOf(
		StreamToken{Delta: "a"},
		StreamToken{Delta: "   "},
		StreamToken{Delta: "\n\t"},
		StreamToken{Delta: "b"},
		StreamToken{Delta: ""},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ab" {
		t.Fatalf("whitespace tokens leaked into buffer: %q", got)
	}
	if len(seen) != 2 || seen[0] != "a" || seen[1] != "b" {
		t.Fatalf("sink saw wrong tokens: %v", seen)
	}
}

func TestAccumulatePreservesInnerWhitespace(t *testing.T) {
	acc := NewStreamAccumulator(nil)
	got, err := acc.Accumulate(context.Background(), StageReport, streamOf(
		StreamToken{Delta: "hello "},
		StreamToken{Delta: " world"},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello  world" {
		t.Fatalf("inner whitespace mangled: %q", got)
	}
}

func TestAccumulateSinkCalledBeforeAppend(t *testing.T) {
	var order []string
	acc := NewStreamAccumulator(func(stage StageID, delta string) {
		order = append(order, "sink:"+delta)
	})
	_, err := acc.Accumulate(context.Background(), StageSearch, streamOf(
		StreamToken{Delta: "x"},
		StreamToken{Delta: "y"},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "sink:x" || order[1] != "sink:y" {
		t.Fatalf("sink invocation order wrong: %v", order)
	}
}

func TestAccumulateReturnsPartialBufferOnStreamError(t *testing.T) {
	acc := NewStreamAccumulator(nil)
	got, err := acc.Accumulate(context.Background(), StageReport, streamOf(
		StreamToken{Delta: "partial"},
		StreamToken{Err: context.DeadlineExceeded},
	))
	if err == nil {
		t.Fatal("expected stream error")
	}
	if got != "partial" {
		t.Fatalf("expected partial buffer, got %q", got)
	}
}

func TestAccumulateHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	open := make(chan StreamToken)
	acc := NewStreamAccumulator(nil)
	_, err := acc.Accumulate(ctx, StagePlan, open)
	if err == nil {
		t.Fatal("expected context error")
	}
}
