package store

import (
	"context"
	"errors"
	"testing"

	"github.com/interviewkit/interviewkit/core"
)

func TestResumeStoreNotFound(t *testing.T) {
	s := NewInMemoryResumeStore()
	_, err := s.GetByCandidateName(context.Background(), "nobody")
	if !errors.Is(err, core.ErrCandidateNotFound) {
		t.Fatalf("expected ErrCandidateNotFound, got %v", err)
	}
}

func TestResumeStoreReturnsCopy(t *testing.T) {
	s := NewInMemoryResumeStore()
	s.Put("Li Wei", core.ResumeFacts{"skills": []string{"python"}})

	facts, err := s.GetByCandidateName(context.Background(), "Li Wei")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	facts["skills"] = nil
	again, _ := s.GetByCandidateName(context.Background(), "Li Wei")
	if again["skills"] == nil {
		t.Fatal("stored facts must not be mutated through the returned map")
	}
}

func TestResultStoreSaveAndHistory(t *testing.T) {
	s := NewInMemoryResultStore()
	ok, err := s.Save(context.Background(), core.InterviewRecord{
		CandidateName: "Li Wei",
		Decision:      core.DecisionAccept,
		Passed:        true,
		AverageScore:  8.3,
	})
	if err != nil || !ok {
		t.Fatalf("save failed: ok=%v err=%v", ok, err)
	}

	history, err := s.History(context.Background(), "Li Wei")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 record, got %d", len(history))
	}
	if history[0].ID == "" || history[0].Timestamp.IsZero() {
		t.Fatal("save must assign id and timestamp")
	}

	empty, _ := s.History(context.Background(), "unknown")
	if len(empty) != 0 {
		t.Fatalf("expected empty history, got %d", len(empty))
	}
}
