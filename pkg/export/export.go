// Package export writes scheduling results for calendars and spreadsheets.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/focusplan/core/model"
	"github.com/kilianp07/focusplan/core/scheduler"
)

// Row is one exported meeting. Unscheduled meetings have zero times.
type Row struct {
	MeetingID   string    `json:"meeting_id"`
	Title       string    `json:"title"`
	MeetingType string    `json:"meeting_type"`
	Priority    int       `json:"priority"`
	Start       time.Time `json:"start,omitempty"`
	End         time.Time `json:"end,omitempty"`
	Score       float64   `json:"score"`
	Scheduled   bool      `json:"scheduled"`
}

// Rows flattens a result: placements by start time, then unscheduled
// meetings in processing order.
func Rows(res scheduler.Result) []Row {
	out := make([]Row, 0, len(res.Scheduled)+len(res.Unscheduled))
	for _, a := range res.Assignments() {
		out = append(out, row(a.Meeting, a.Slot.Start, a.Slot.End, a.Score, true))
	}
	for _, m := range res.Unscheduled {
		out = append(out, row(m, time.Time{}, time.Time{}, 0, false))
	}
	return out
}

func row(m model.Meeting, start, end time.Time, score float64, ok bool) Row {
	return Row{
		MeetingID:   m.ID,
		Title:       m.Title,
		MeetingType: m.Type.String(),
		Priority:    m.Priority,
		Start:       start,
		End:         end,
		Score:       score,
		Scheduled:   ok,
	}
}

// WriteJSON writes the full result. The output can be decoded back into a
// scheduler.Result.
func WriteJSON(w io.Writer, res scheduler.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteCSV writes one line per meeting.
func WriteCSV(w io.Writer, res scheduler.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"meeting_id", "title", "meeting_type", "priority", "start", "end", "score", "scheduled"}); err != nil {
		return err
	}
	for _, r := range Rows(res) {
		rec := []string{
			r.MeetingID,
			r.Title,
			r.MeetingType,
			strconv.Itoa(r.Priority),
			formatTime(r.Start),
			formatTime(r.End),
			strconv.FormatFloat(r.Score, 'f', 2, 64),
			strconv.FormatBool(r.Scheduled),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSlotsCSV writes suggested slots, best first.
func WriteSlotsCSV(w io.Writer, slots []model.TimeSlot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"start", "end", "score"}); err != nil {
		return err
	}
	for _, s := range slots {
		if err := cw.Write([]string{formatTime(s.Start), formatTime(s.End), strconv.FormatFloat(s.Score, 'f', 2, 64)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
