package memory

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestAverageScoreEmptyAndBasic(t *testing.T) {
	m := New("Li Wei")
	if got := m.AverageScore(); got != 0 {
		t.Fatalf("empty average = %v, want 0", got)
	}
	i := m.Append("q1", "a1", time.Now())
	m.RecordScore(i, 3, "")
	i = m.Append("q2", "a2", time.Now())
	m.RecordScore(i, 7, "")
	if got := m.AverageScore(); got != 5.0 {
		t.Fatalf("average of [3,7] = %v, want 5.0", got)
	}
}

func TestRecentWindow(t *testing.T) {
	m := New("c")
	for i := 0; i < 5; i++ {
		m.Append("q", "a", time.Now())
	}
	if got := len(m.Recent(3)); got != 3 {
		t.Fatalf("Recent(3) returned %d entries", got)
	}
	recent := m.Recent(3)
	if recent[len(recent)-1].Index != 4 {
		t.Fatalf("Recent must return the latest entries, got last index %d", recent[len(recent)-1].Index)
	}
	if got := len(m.Recent(10)); got != 5 {
		t.Fatalf("Recent larger than log returned %d", got)
	}
	if m.Recent(0) != nil {
		t.Fatal("Recent(0) must be nil")
	}
}

func TestTranscriptIncludesScores(t *testing.T) {
	m := New("Li Wei")
	i := m.Append("Tell me about Go.", "I like goroutines.", time.Now())
	m.RecordScore(i, 8, "good depth")
	out := m.Transcript(true)
	for _, want := range []string{"Li Wei", "Tell me about Go.", "Score: 8/10", "good depth", "Current average: 8.00/10"} {
		if !strings.Contains(out, want) {
			t.Fatalf("transcript missing %q:\n%s", want, out)
		}
	}
}

func TestManagerRemoveIdempotent(t *testing.T) {
	mgr := NewManager()
	mgr.Create("s1", "c")
	if mgr.Get("s1") == nil {
		t.Fatal("expected memory after Create")
	}
	mgr.Remove("s1")
	mgr.Remove("s1")
	mgr.Remove("never-existed")
	if mgr.Get("s1") != nil {
		t.Fatal("memory must be gone after Remove")
	}
	if mgr.Len() != 0 {
		t.Fatalf("expected empty manager, got %d", mgr.Len())
	}
}

func TestMemoryConcurrentAppend(t *testing.T) {
	m := New("c")
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			idx := m.Append("q", "a", time.Now())
			m.RecordScore(idx, 5, "")
		}()
	}
	wg.Wait()
	if m.Len() != 20 {
		t.Fatalf("expected 20 entries, got %d", m.Len())
	}
	if got := m.AverageScore(); got != 5 {
		t.Fatalf("average = %v, want 5", got)
	}
}
