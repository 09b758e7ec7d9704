package availability

import (
	"sort"
	"sync"
	"time"

	"huddle/shared/timerange"
)

// Interval is one reserved slot in a room's schedule.
type Interval struct {
	BookingID string
	Range     timerange.TimeRange
}

// Index tracks the confirmed intervals per room. It is the authority for
// "is this room free in this window". Only the booking transaction manager
// mutates it; reads may run concurrently with mutations and tolerate
// staleness, which the manager corrects by re-validating under the room lock.
type Index struct {
	mu    sync.RWMutex
	rooms map[string]*roomSchedule
}

type roomSchedule struct {
	mu sync.RWMutex
	// version increments on every successful mutation; the transaction
	// manager uses it to detect interference between check and commit.
	version uint64
	// intervals are kept sorted by start and pairwise non-overlapping.
	intervals []Interval
}

func NewIndex() *Index {
	return &Index{
		rooms: make(map[string]*roomSchedule),
	}
}

func (i *Index) room(roomID string) *roomSchedule {
	i.mu.RLock()
	sched, ok := i.rooms[roomID]
	i.mu.RUnlock()

	if ok {
		return sched
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if sched, ok = i.rooms[roomID]; ok {
		return sched
	}

	sched = &roomSchedule{}
	i.rooms[roomID] = sched

	return sched
}

// IsFree reports whether no reserved interval for the room overlaps r.
func (i *Index) IsFree(roomID string, r timerange.TimeRange) bool {
	_, overlap := i.FindOverlap(roomID, r)

	return !overlap
}

// FindOverlap returns the first reserved interval overlapping r, if any.
func (i *Index) FindOverlap(roomID string, r timerange.TimeRange) (Interval, bool) {
	sched := i.room(roomID)

	sched.mu.RLock()
	defer sched.mu.RUnlock()

	return sched.findOverlap(r)
}

// Version returns the room's mutation counter for optimistic validation.
func (i *Index) Version(roomID string) uint64 {
	sched := i.room(roomID)

	sched.mu.RLock()
	defer sched.mu.RUnlock()

	return sched.version
}

// Reserve inserts the interval unconditionally. The caller must have just
// confirmed the slot is free for this room; the method does not re-check so
// the transaction manager keeps explicit control of the check-then-act
// boundary (via ReserveIfVersion).
func (i *Index) Reserve(roomID string, r timerange.TimeRange, bookingID string) {
	sched := i.room(roomID)

	sched.mu.Lock()
	defer sched.mu.Unlock()

	sched.insert(Interval{BookingID: bookingID, Range: r})
	sched.version++
}

// ReserveIfVersion inserts the interval only when the room's version still
// matches the one observed at check time. A false return means a concurrent
// mutation happened in between and the caller must re-validate.
func (i *Index) ReserveIfVersion(roomID string, version uint64, r timerange.TimeRange, bookingID string) bool {
	sched := i.room(roomID)

	sched.mu.Lock()
	defer sched.mu.Unlock()

	if sched.version != version {
		return false
	}

	sched.insert(Interval{BookingID: bookingID, Range: r})
	sched.version++

	return true
}

// Release removes the booking's interval. Releasing an absent interval is a
// no-op, not an error, so retries and duplicate cancels stay safe.
func (i *Index) Release(roomID string, r timerange.TimeRange, bookingID string) {
	sched := i.room(roomID)

	sched.mu.Lock()
	defer sched.mu.Unlock()

	if sched.remove(bookingID, r) {
		sched.version++
	}
}

// ReleaseAll removes every interval held by the booking. Cancel goes through
// here rather than Release so that an alter staged against the booking at the
// same moment cannot leave a second interval behind.
func (i *Index) ReleaseAll(roomID string, bookingID string) {
	sched := i.room(roomID)

	sched.mu.Lock()
	defer sched.mu.Unlock()

	kept := sched.intervals[:0]

	for _, iv := range sched.intervals {
		if iv.BookingID == bookingID {
			continue
		}

		kept = append(kept, iv)
	}

	if len(kept) != len(sched.intervals) {
		sched.intervals = kept
		sched.version++
	}
}

// FindOverlapExcept returns the first interval overlapping r that is held by
// a booking other than the given one, so a booking's own interval never
// blocks its replacement.
func (i *Index) FindOverlapExcept(roomID string, r timerange.TimeRange, bookingID string) (Interval, bool) {
	sched := i.room(roomID)

	sched.mu.RLock()
	defer sched.mu.RUnlock()

	return sched.findOverlapExcept(r, bookingID)
}

// StageIfVersion reserves newRange alongside the booking's current interval.
// Both intervals stay held until the caller releases one of them, so no
// competing writer can claim either slot while the change is being persisted.
// The commit fails when the room's version moved since the check, or when the
// booking already holds an interval other than oldRange (another alter is in
// flight for it).
func (i *Index) StageIfVersion(roomID string, version uint64, bookingID string, oldRange, newRange timerange.TimeRange) bool {
	sched := i.room(roomID)

	sched.mu.Lock()
	defer sched.mu.Unlock()

	if sched.version != version {
		return false
	}

	for _, iv := range sched.intervals {
		if iv.BookingID == bookingID && !iv.Range.Equal(oldRange) {
			return false
		}
	}

	sched.insert(Interval{BookingID: bookingID, Range: newRange})
	sched.version++

	return true
}

// Compact drops intervals that ended before the cutoff and returns how many
// were removed. Past intervals cannot conflict with bookable (future) ranges
// once callers stop altering into them.
func (i *Index) Compact(before time.Time) int {
	i.mu.RLock()
	scheds := make([]*roomSchedule, 0, len(i.rooms))

	for _, sched := range i.rooms {
		scheds = append(scheds, sched)
	}
	i.mu.RUnlock()

	removed := 0

	for _, sched := range scheds {
		sched.mu.Lock()

		kept := sched.intervals[:0]

		for _, iv := range sched.intervals {
			if iv.Range.End.Before(before) {
				removed++

				continue
			}

			kept = append(kept, iv)
		}

		if len(kept) != len(sched.intervals) {
			sched.intervals = kept
			sched.version++
		}

		sched.mu.Unlock()
	}

	return removed
}

// Intervals returns a copy of the room's reserved intervals, sorted by start.
func (i *Index) Intervals(roomID string) []Interval {
	sched := i.room(roomID)

	sched.mu.RLock()
	defer sched.mu.RUnlock()

	out := make([]Interval, len(sched.intervals))
	copy(out, sched.intervals)

	return out
}

func (s *roomSchedule) findOverlap(r timerange.TimeRange) (Interval, bool) {
	// Sorted by start: everything from the first interval starting at or
	// after r.End onwards cannot overlap.
	for _, iv := range s.intervals {
		if !iv.Range.Start.Before(r.End) {
			break
		}

		if iv.Range.Overlaps(r) {
			return iv, true
		}
	}

	return Interval{}, false
}

func (s *roomSchedule) findOverlapExcept(r timerange.TimeRange, bookingID string) (Interval, bool) {
	for _, iv := range s.intervals {
		if !iv.Range.Start.Before(r.End) {
			break
		}

		if iv.BookingID != bookingID && iv.Range.Overlaps(r) {
			return iv, true
		}
	}

	return Interval{}, false
}

func (s *roomSchedule) insert(iv Interval) {
	at := sort.Search(len(s.intervals), func(idx int) bool {
		return s.intervals[idx].Range.Start.After(iv.Range.Start)
	})

	s.intervals = append(s.intervals, Interval{})
	copy(s.intervals[at+1:], s.intervals[at:])
	s.intervals[at] = iv
}

func (s *roomSchedule) remove(bookingID string, r timerange.TimeRange) bool {
	for idx, iv := range s.intervals {
		if iv.BookingID == bookingID && iv.Range.Equal(r) {
			s.intervals = append(s.intervals[:idx], s.intervals[idx+1:]...)

			return true
		}
	}

	return false
}
