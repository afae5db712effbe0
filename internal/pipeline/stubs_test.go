package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/longregen/lexigen/internal/domain/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testVocab() models.Vocabulary {
	return models.Vocabulary{
		{Word: "猫", POS: "noun", Definition: "cat", Class: "animal"},
		{Word: "跑", POS: "verb", Definition: "run", Class: "action"},
	}
}

// stubPromptGen drafts "P:" + definition and counts calls.
type stubPromptGen struct {
	calls  atomic.Int64
	failOn string // word that triggers an error, empty for none
}

func (s *stubPromptGen) Generate(_ context.Context, entry models.VocabEntry) (string, error) {
	s.calls.Add(1)
	if s.failOn != "" && entry.Word == s.failOn {
		return "", fmt.Errorf("llm unavailable")
	}
	return "P:" + entry.Definition, nil
}

// stubImageGen returns n fixed 4-byte artifacts per prompt and tracks the
// maximum number of simultaneously outstanding calls.
type stubImageGen struct {
	n        int
	calls    atomic.Int64
	inFlight atomic.Int64
	maxSeen  atomic.Int64
	block    chan struct{} // when non-nil, calls wait here before returning
	failOn   string        // prompt substring that triggers an error
}

func (s *stubImageGen) Generate(_ context.Context, prompt string) ([][]byte, error) {
	s.calls.Add(1)
	cur := s.inFlight.Add(1)
	for {
		seen := s.maxSeen.Load()
		if cur <= seen || s.maxSeen.CompareAndSwap(seen, cur) {
			break
		}
	}
	if s.block != nil {
		<-s.block
	}
	defer s.inFlight.Add(-1)

	if s.failOn != "" && strings.Contains(prompt, s.failOn) {
		return nil, fmt.Errorf("backend error")
	}

	images := make([][]byte, s.n)
	for i := range images {
		images[i] = []byte{0xDE, 0xAD, byte(i), byte(len(prompt))}
	}
	return images, nil
}

// stubScorer returns a fixed score per prompt and records lifecycle calls.
type stubScorer struct {
	scores    map[string]float64 // prompt -> raw score
	fallback  float64
	initCalls atomic.Int64
	closed    atomic.Bool
}

func (s *stubScorer) Init(context.Context) error {
	s.initCalls.Add(1)
	return nil
}

func (s *stubScorer) Score(_ context.Context, prompt string, _ []byte) (float64, error) {
	if v, ok := s.scores[prompt]; ok {
		return v, nil
	}
	return s.fallback, nil
}

func (s *stubScorer) Close(context.Context) error {
	s.closed.Store(true)
	return nil
}
