package engine

import "github.com/ftahirops/ptop/util"

// histHashSize is the bucket count of each history index; must be a power of two.
const histHashSize = 1024

// Counters are the cumulative per-task values tracked across frames.
type Counters struct {
	Ticks  uint64
	MajFlt uint64
	MinFlt uint64
}

type histEntry struct {
	pid   int
	start uint64
	c     Counters
	next  int32 // index of the next entry in the same bucket, -1 ends the chain
}

// histBuf is one frame's worth of entries plus its hash index.
type histBuf struct {
	entries []histEntry
	n       int
	buckets [histHashSize]int32
}

func (b *histBuf) reset() {
	b.n = 0
	for i := range b.buckets {
		b.buckets[i] = -1
	}
}

func (b *histBuf) lookup(pid int) *histEntry {
	for i := b.buckets[pid&(histHashSize-1)]; i >= 0; i = b.entries[i].next {
		if b.entries[i].pid == pid {
			return &b.entries[i]
		}
	}
	return nil
}

// History remembers the previous frame's cumulative counters per pid so the
// current frame can report deltas. One slot is being built this frame, the
// other is frozen and only queried.
type History struct {
	bufs [2]histBuf
	cur  int
}

// NewHistory creates an empty tracker.
func NewHistory() *History {
	h := &History{}
	h.bufs[0].reset()
	h.bufs[1].reset()
	return h
}

// BeginFrame freezes the slot built during the last frame and empties the
// other one for this frame. Backing storage is kept.
func (h *History) BeginFrame() {
	h.cur ^= 1
	h.bufs[h.cur].reset()
}

// Record stores this frame's counters for pid and returns the growth since
// the previous frame. A pid that was not seen last frame, or whose start
// time changed (the pid was reused), is reported with its full values.
func (h *History) Record(pid int, start uint64, c Counters) Counters {
	b := &h.bufs[h.cur]
	if b.n == len(b.entries) {
		grown := make([]histEntry, b.n*5/4+100)
		copy(grown, b.entries[:b.n])
		b.entries = grown
	}
	slot := pid & (histHashSize - 1)
	b.entries[b.n] = histEntry{pid: pid, start: start, c: c, next: b.buckets[slot]}
	b.buckets[slot] = int32(b.n)
	b.n++

	prev := h.bufs[h.cur^1].lookup(pid)
	if prev == nil || prev.start != start {
		return c
	}
	return Counters{
		Ticks:  util.Delta(prev.c.Ticks, c.Ticks),
		MajFlt: util.Delta(prev.c.MajFlt, c.MajFlt),
		MinFlt: util.Delta(prev.c.MinFlt, c.MinFlt),
	}
}

// Len returns the number of tasks recorded this frame.
func (h *History) Len() int {
	return h.bufs[h.cur].n
}

// capacity is the backing size of the building slot.
func (h *History) capacity() int {
	return len(h.bufs[h.cur].entries)
}
