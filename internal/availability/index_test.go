package availability_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huddle/internal/availability"
	"huddle/shared/timerange"
)

func rng(t *testing.T, start, end string) timerange.TimeRange {
	t.Helper()

	s, err := time.Parse(time.RFC3339, start)
	require.NoError(t, err)

	e, err := time.Parse(time.RFC3339, end)
	require.NoError(t, err)

	return timerange.TimeRange{Start: s, End: e}
}

func TestIndex_ReserveAndIsFree(t *testing.T) {
	idx := availability.NewIndex()

	booked := rng(t, "2025-01-16T09:00:00Z", "2025-01-16T10:00:00Z")
	idx.Reserve("room-1", booked, "bk-1")

	assert.False(t, idx.IsFree("room-1", rng(t, "2025-01-16T09:30:00Z", "2025-01-16T10:30:00Z")))
	assert.True(t, idx.IsFree("room-1", rng(t, "2025-01-16T10:00:00Z", "2025-01-16T11:00:00Z")), "half-open boundary: back to back is free")
	assert.True(t, idx.IsFree("room-2", booked), "other rooms are unaffected")

	conflict, overlap := idx.FindOverlap("room-1", rng(t, "2025-01-16T09:45:00Z", "2025-01-16T11:00:00Z"))
	require.True(t, overlap)
	assert.Equal(t, "bk-1", conflict.BookingID)
}

func TestIndex_ReleaseIsIdempotent(t *testing.T) {
	idx := availability.NewIndex()

	r := rng(t, "2025-01-16T09:00:00Z", "2025-01-16T10:00:00Z")
	idx.Reserve("room-1", r, "bk-1")

	idx.Release("room-1", r, "bk-1")
	assert.True(t, idx.IsFree("room-1", r))

	verAfterFirst := idx.Version("room-1")

	// second release of the same interval is a no-op
	idx.Release("room-1", r, "bk-1")
	assert.Equal(t, verAfterFirst, idx.Version("room-1"), "no-op release must not bump the version")
}

func TestIndex_ReserveIfVersion(t *testing.T) {
	idx := availability.NewIndex()

	ver := idx.Version("room-1")

	ok := idx.ReserveIfVersion("room-1", ver, rng(t, "2025-01-16T09:00:00Z", "2025-01-16T10:00:00Z"), "bk-1")
	assert.True(t, ok)

	// stale version: a mutation happened since the check
	ok = idx.ReserveIfVersion("room-1", ver, rng(t, "2025-01-16T11:00:00Z", "2025-01-16T12:00:00Z"), "bk-2")
	assert.False(t, ok)
	assert.True(t, idx.IsFree("room-1", rng(t, "2025-01-16T11:00:00Z", "2025-01-16T12:00:00Z")))
}

func TestIndex_FindOverlapExcept(t *testing.T) {
	idx := availability.NewIndex()

	idx.Reserve("room-1", rng(t, "2025-01-16T09:00:00Z", "2025-01-16T10:00:00Z"), "bk-1")
	idx.Reserve("room-1", rng(t, "2025-01-16T14:00:00Z", "2025-01-16T15:00:00Z"), "bk-2")

	// the booking's own interval does not block an overlapping replacement
	_, overlap := idx.FindOverlapExcept("room-1", rng(t, "2025-01-16T09:30:00Z", "2025-01-16T10:30:00Z"), "bk-1")
	assert.False(t, overlap)

	// other bookings still do
	blocking, overlap := idx.FindOverlapExcept("room-1", rng(t, "2025-01-16T14:30:00Z", "2025-01-16T15:30:00Z"), "bk-1")
	require.True(t, overlap)
	assert.Equal(t, "bk-2", blocking.BookingID)
}

func TestIndex_StageIfVersion(t *testing.T) {
	oldRange := rng(t, "2025-01-16T09:00:00Z", "2025-01-16T10:00:00Z")
	newRange := rng(t, "2025-01-16T09:30:00Z", "2025-01-16T10:30:00Z")

	t.Run("both intervals are held until one is released", func(t *testing.T) {
		idx := availability.NewIndex()
		idx.Reserve("room-1", oldRange, "bk-1")

		ver := idx.Version("room-1")
		require.True(t, idx.StageIfVersion("room-1", ver, "bk-1", oldRange, newRange))

		// neither slot can be claimed while the change is in flight
		assert.False(t, idx.IsFree("room-1", oldRange))
		assert.False(t, idx.IsFree("room-1", newRange))

		idx.Release("room-1", oldRange, "bk-1")
		assert.True(t, idx.IsFree("room-1", rng(t, "2025-01-16T09:00:00Z", "2025-01-16T09:30:00Z")))
		assert.False(t, idx.IsFree("room-1", newRange))
	})

	t.Run("stale version fails the commit", func(t *testing.T) {
		idx := availability.NewIndex()
		idx.Reserve("room-1", oldRange, "bk-1")

		ver := idx.Version("room-1")
		idx.ReleaseAll("room-1", "bk-1")

		assert.False(t, idx.StageIfVersion("room-1", ver, "bk-1", oldRange, newRange))
		assert.True(t, idx.IsFree("room-1", newRange))
	})

	t.Run("a second staged interval is rejected", func(t *testing.T) {
		idx := availability.NewIndex()
		idx.Reserve("room-1", oldRange, "bk-1")

		require.True(t, idx.StageIfVersion("room-1", idx.Version("room-1"), "bk-1", oldRange, newRange))

		another := rng(t, "2025-01-16T12:00:00Z", "2025-01-16T13:00:00Z")
		assert.False(t, idx.StageIfVersion("room-1", idx.Version("room-1"), "bk-1", oldRange, another))
		assert.True(t, idx.IsFree("room-1", another))
	})
}

func TestIndex_ReleaseAll(t *testing.T) {
	idx := availability.NewIndex()

	first := rng(t, "2025-01-16T09:00:00Z", "2025-01-16T10:00:00Z")
	second := rng(t, "2025-01-16T11:00:00Z", "2025-01-16T12:00:00Z")
	other := rng(t, "2025-01-16T14:00:00Z", "2025-01-16T15:00:00Z")

	idx.Reserve("room-1", first, "bk-1")
	idx.Reserve("room-1", second, "bk-1")
	idx.Reserve("room-1", other, "bk-2")

	idx.ReleaseAll("room-1", "bk-1")

	assert.True(t, idx.IsFree("room-1", first))
	assert.True(t, idx.IsFree("room-1", second))
	assert.False(t, idx.IsFree("room-1", other), "other bookings keep their intervals")

	ver := idx.Version("room-1")
	idx.ReleaseAll("room-1", "bk-1")
	assert.Equal(t, ver, idx.Version("room-1"), "releasing nothing must not bump the version")
}

func TestIndex_Compact(t *testing.T) {
	idx := availability.NewIndex()

	idx.Reserve("room-1", rng(t, "2025-01-16T09:00:00Z", "2025-01-16T10:00:00Z"), "bk-old")
	idx.Reserve("room-1", rng(t, "2025-01-20T09:00:00Z", "2025-01-20T10:00:00Z"), "bk-new")

	cutoff, err := time.Parse(time.RFC3339, "2025-01-18T00:00:00Z")
	require.NoError(t, err)

	removed := idx.Compact(cutoff)
	assert.Equal(t, 1, removed)

	intervals := idx.Intervals("room-1")
	require.Len(t, intervals, 1)
	assert.Equal(t, "bk-new", intervals[0].BookingID)
}

func TestIndex_ConcurrentReserveSingleWinner(t *testing.T) {
	idx := availability.NewIndex()

	contested := rng(t, "2025-01-16T09:00:00Z", "2025-01-16T10:00:00Z")

	const racers = 32

	var (
		wg   sync.WaitGroup
		wins int64
		mu   sync.Mutex
	)

	for n := range racers {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			// validate-then-commit discipline with a bounded retry, the way
			// the transaction manager drives the index
			for range 4 {
				ver := idx.Version("room-1")

				if _, overlap := idx.FindOverlap("room-1", contested); overlap {
					return
				}

				if idx.ReserveIfVersion("room-1", ver, contested, fmt.Sprintf("bk-%d", n)) {
					mu.Lock()
					wins++
					mu.Unlock()

					return
				}
			}
		}(n)
	}

	wg.Wait()

	assert.Equal(t, int64(1), wins, "exactly one racer may hold the contested range")
	assert.Len(t, idx.Intervals("room-1"), 1)
}

func TestIndex_ConcurrentDisjointRoomsAllSucceed(t *testing.T) {
	idx := availability.NewIndex()

	r := rng(t, "2025-01-16T09:00:00Z", "2025-01-16T10:00:00Z")

	const rooms = 16

	var wg sync.WaitGroup

	for n := range rooms {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			roomID := fmt.Sprintf("room-%d", n)
			ver := idx.Version(roomID)
			assert.True(t, idx.ReserveIfVersion(roomID, ver, r, fmt.Sprintf("bk-%d", n)))
		}(n)
	}

	wg.Wait()

	for n := range rooms {
		assert.False(t, idx.IsFree(fmt.Sprintf("room-%d", n), r))
	}
}

func TestIndex_IntervalsSortedByStart(t *testing.T) {
	idx := availability.NewIndex()

	idx.Reserve("room-1", rng(t, "2025-01-16T14:00:00Z", "2025-01-16T15:00:00Z"), "bk-2")
	idx.Reserve("room-1", rng(t, "2025-01-16T09:00:00Z", "2025-01-16T10:00:00Z"), "bk-1")
	idx.Reserve("room-1", rng(t, "2025-01-16T11:00:00Z", "2025-01-16T12:00:00Z"), "bk-3")

	intervals := idx.Intervals("room-1")
	require.Len(t, intervals, 3)
	assert.Equal(t, "bk-1", intervals[0].BookingID)
	assert.Equal(t, "bk-3", intervals[1].BookingID)
	assert.Equal(t, "bk-2", intervals[2].BookingID)
}
