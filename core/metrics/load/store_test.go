package load

import (
	"testing"
	"time"
)

func TestMemoryStore_Aggregation(t *testing.T) {
	s := NewMemoryStore()
	d := Day(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC))
	if err := s.Add(Record{UserID: "u1", Date: d.Add(9 * time.Hour), Meetings: 1, MeetingMinutes: 30}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(Record{UserID: "u1", Date: d.Add(14 * time.Hour), Meetings: 1, MeetingMinutes: 90}); err != nil {
		t.Fatalf("add2: %v", err)
	}
	if err := s.Add(Record{UserID: "u1", Date: d.AddDate(0, 0, 3), Meetings: 1, MeetingMinutes: 60}); err != nil {
		t.Fatalf("add3: %v", err)
	}
	recs, err := s.Query("u1", d, d)
	if err != nil || len(recs) != 1 {
		t.Fatalf("query: %v len=%d", err, len(recs))
	}
	if recs[0].MeetingMinutes != 120 || recs[0].Meetings != 2 {
		t.Fatalf("unexpected aggregate %+v", recs[0])
	}
	recs, _ = s.Query("u1", d, d.AddDate(0, 0, 7))
	if len(recs) != 2 || !recs[0].Date.Before(recs[1].Date) {
		t.Fatalf("expected two ordered records, got %+v", recs)
	}
}

func TestRecordCalculations(t *testing.T) {
	r := Record{MeetingMinutes: 150}
	if r.Ratio(600) != 0.25 {
		t.Fatalf("ratio")
	}
	if r.FreeMinutes(600) != 450 {
		t.Fatalf("free")
	}
	over := Record{MeetingMinutes: 700}
	if over.Ratio(600) != 1 || over.FreeMinutes(600) != 0 {
		t.Fatalf("overbooked day must cap")
	}
	if r.Ratio(0) != 0 {
		t.Fatalf("zero work minutes")
	}
}

func TestMemoryStore_ReplaceSupersedesWindow(t *testing.T) {
	s := NewMemoryStore()
	d := Day(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC))
	plan := []Record{
		{Date: d.Add(9 * time.Hour), Meetings: 1, MeetingMinutes: 60},
		{Date: d.AddDate(0, 0, 1).Add(10 * time.Hour), Meetings: 1, MeetingMinutes: 30},
	}
	for i := 0; i < 2; i++ {
		if err := s.Replace("u1", d, d.AddDate(0, 0, 2), plan); err != nil {
			t.Fatalf("replace %d: %v", i, err)
		}
	}
	recs, _ := s.Query("u1", d, d.AddDate(0, 0, 1))
	if len(recs) != 2 || recs[0].MeetingMinutes != 60 || recs[0].Meetings != 1 {
		t.Fatalf("replaying a plan must not accumulate, got %+v", recs)
	}
	if recs[0].UserID != "u1" {
		t.Fatalf("records take the replaced user, got %q", recs[0].UserID)
	}

	// A shorter plan for the first day only keeps the second day.
	if err := s.Replace("u1", d, d.AddDate(0, 0, 1), nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	recs, _ = s.Query("u1", d, d.AddDate(0, 0, 1))
	if len(recs) != 1 || !recs[0].Date.Equal(d.AddDate(0, 0, 1)) {
		t.Fatalf("expected only the second day, got %+v", recs)
	}
}

func TestDays(t *testing.T) {
	d := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	if got := Days(d.Add(8*time.Hour), d.Add(18*time.Hour)); len(got) != 1 || !got[0].Equal(d) {
		t.Fatalf("single day window: %v", got)
	}
	if got := Days(d, d.AddDate(0, 0, 5)); len(got) != 5 {
		t.Fatalf("week window: %v", got)
	}
	if got := Days(d, d); len(got) != 0 {
		t.Fatalf("empty window: %v", got)
	}
}
