package slots

import (
	"errors"
	"iter"
	"sort"
	"time"

	"github.com/kilianp07/focusplan/core/model"
)

// ErrNotFree is returned when reserving time that is not entirely free.
var ErrNotFree = errors.New("interval not free")

type interval struct {
	start, end time.Time
}

// Pool is the set of free time owned by a single assignment run. It is a
// sorted list of disjoint intervals and is not safe for concurrent mutation.
type Pool struct {
	free []interval
}

// NewPool builds a pool from candidate slots; touching slots are merged.
func NewPool(seq iter.Seq[model.TimeSlot]) *Pool {
	var list []interval
	for s := range seq {
		list = append(list, interval{start: s.Start, end: s.End})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].start.Before(list[j].start) })
	p := &Pool{}
	for _, iv := range list {
		if n := len(p.free); n > 0 && !iv.start.After(p.free[n-1].end) {
			if iv.end.After(p.free[n-1].end) {
				p.free[n-1].end = iv.end
			}
			continue
		}
		p.free = append(p.free, iv)
	}
	return p
}

// Clone returns an independent copy of the pool.
func (p *Pool) Clone() *Pool {
	return &Pool{free: append([]interval(nil), p.free...)}
}

// Free returns the free blocks in chronological order.
func (p *Pool) Free() []model.TimeSlot {
	out := make([]model.TimeSlot, len(p.free))
	for i, iv := range p.free {
		out[i] = model.TimeSlot{Start: iv.start, End: iv.end}
	}
	return out
}

// Total returns the amount of free time left.
func (p *Pool) Total() time.Duration {
	var d time.Duration
	for _, iv := range p.free {
		d += iv.end.Sub(iv.start)
	}
	return d
}

// FeasibleStarts yields, in chronological order, every start on the step
// grid at which a contiguous free block of at least d begins.
func (p *Pool) FeasibleStarts(d, step time.Duration) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if d <= 0 || step <= 0 {
			return
		}
		for _, iv := range p.free {
			for s := alignUp(iv.start, step); !s.Add(d).After(iv.end); s = s.Add(step) {
				if !yield(s) {
					return
				}
			}
		}
	}
}

// IsFree reports whether [start, end) lies inside a single free block.
func (p *Pool) IsFree(start, end time.Time) bool {
	return p.find(start, end) >= 0
}

// Reserve removes [start, end) from the pool, splitting the enclosing free
// block into the remainders before and after it.
func (p *Pool) Reserve(start, end time.Time) error {
	if !end.After(start) {
		return model.ErrInvalidRange
	}
	i := p.find(start, end)
	if i < 0 {
		return ErrNotFree
	}
	iv := p.free[i]
	var repl []interval
	if start.After(iv.start) {
		repl = append(repl, interval{start: iv.start, end: start})
	}
	if iv.end.After(end) {
		repl = append(repl, interval{start: end, end: iv.end})
	}
	next := make([]interval, 0, len(p.free)+1)
	next = append(next, p.free[:i]...)
	next = append(next, repl...)
	next = append(next, p.free[i+1:]...)
	p.free = next
	return nil
}

// Remove subtracts [start, end) from whatever free time it overlaps. Unlike
// Reserve it accepts partially free or busy intervals.
func (p *Pool) Remove(start, end time.Time) {
	if !end.After(start) {
		return
	}
	next := make([]interval, 0, len(p.free)+1)
	for _, iv := range p.free {
		if !iv.end.After(start) || !end.After(iv.start) {
			next = append(next, iv)
			continue
		}
		if start.After(iv.start) {
			next = append(next, interval{start: iv.start, end: start})
		}
		if iv.end.After(end) {
			next = append(next, interval{start: end, end: iv.end})
		}
	}
	p.free = next
}

func (p *Pool) find(start, end time.Time) int {
	i := sort.Search(len(p.free), func(i int) bool { return p.free[i].end.After(start) })
	if i < len(p.free) && !p.free[i].start.After(start) && !end.After(p.free[i].end) {
		return i
	}
	return -1
}

// alignUp rounds t up to the next multiple of step counted from midnight of
// its day.
func alignUp(t time.Time, step time.Duration) time.Time {
	day := model.Day(t)
	off := t.Sub(day)
	if rem := off % step; rem != 0 {
		off += step - rem
	}
	return day.Add(off)
}
