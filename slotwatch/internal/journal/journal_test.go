package journal

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/slotwatch/dbopen"
	"github.com/hazyhaar/slotwatch/idgen"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	return New(db, WithIDGenerator(idgen.Sequence("c")))
}

func TestRecordAndCycles(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()
	t0 := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	outcomes := []Outcome{Unavailable, Unavailable, Available}
	for i, o := range outcomes {
		id, err := j.Record(ctx, Cycle{
			Profile:   "ankara-general",
			Seq:       i + 1,
			StartedAt: t0.Add(time.Duration(i) * 10 * time.Minute),
			Duration:  1500 * time.Millisecond,
			Outcome:   o,
		})
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if want := "c" + string(rune('1'+i)); id != want {
			t.Fatalf("id = %q, want %q", id, want)
		}
	}

	got, err := j.Cycles(ctx, "ankara-general")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d cycles, want 3", len(got))
	}
	if got[2].Outcome != Available || got[2].Seq != 3 {
		t.Fatalf("last cycle = %+v", got[2])
	}
	if got[0].Duration != 1500*time.Millisecond {
		t.Fatalf("duration = %v", got[0].Duration)
	}
	if !got[1].StartedAt.Equal(t0.Add(10 * time.Minute)) {
		t.Fatalf("started_at = %v", got[1].StartedAt)
	}
}

func TestSummary(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()
	t0 := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	for i, o := range []Outcome{Unavailable, PageError, Unavailable, Available} {
		j.Log(ctx, Cycle{Profile: "p", Seq: i + 1, StartedAt: t0.Add(time.Duration(i) * time.Minute), Outcome: o})
	}
	j.Log(ctx, Cycle{Profile: "other", Seq: 1, StartedAt: t0, Outcome: Available})

	s, err := j.Summary(ctx, "p")
	if err != nil {
		t.Fatal(err)
	}
	if s.Cycles != 4 {
		t.Fatalf("cycles = %d, want 4", s.Cycles)
	}
	if s.Outcomes[Unavailable] != 2 || s.Outcomes[PageError] != 1 || s.Outcomes[Available] != 1 {
		t.Fatalf("outcomes = %v", s.Outcomes)
	}
	if !s.First.Equal(t0) || !s.Last.Equal(t0.Add(3*time.Minute)) {
		t.Fatalf("first=%v last=%v", s.First, s.Last)
	}
}

func TestSummary_Empty(t *testing.T) {
	j := newTestJournal(t)
	s, err := j.Summary(context.Background(), "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if s.Cycles != 0 || !s.First.IsZero() {
		t.Fatalf("summary = %+v", s)
	}
}

func TestDefaultIDs(t *testing.T) {
	j := New(dbopen.OpenMemory(t, dbopen.WithSchema(Schema)))
	id, err := j.Record(context.Background(), Cycle{Profile: "p", Seq: 1, StartedAt: time.Now(), Outcome: Unavailable})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(id, "cyc_") {
		t.Fatalf("id = %q, want cyc_ prefix", id)
	}
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "journal.db")
	j, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	j.Log(ctx, Cycle{Profile: "p", Seq: 1, StartedAt: time.Now(), Outcome: Cancelled, Detail: "interrupted"})
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}

	j, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()
	got, err := j.Cycles(ctx, "p")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Detail != "interrupted" {
		t.Fatalf("cycles = %+v", got)
	}
}

func TestOpen_Memory(t *testing.T) {
	j, err := Open(dbopen.Memory)
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()
	if _, err := j.Record(context.Background(), Cycle{Profile: "p", Seq: 1, StartedAt: time.Now(), Outcome: Unavailable}); err != nil {
		t.Fatal(err)
	}
}
