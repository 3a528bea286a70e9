// Package feedback implements the ring of per-frame training sample counters
// shared between the cache engine and the sizing controller.
//
// The engine accumulates into the slot of the frame it is executing while the
// controller drains, once per frame, the slot that is next in line to be
// reused. The channel uses no locks or atomics: the slot drained at frame f
// was last owned by frame f+1-depth and is not owned again until frame f+1.
// This only holds if the frame driver never lets more than depth frames of
// work be in flight. Overrunning the ring silently yields stale or torn
// counts; builds tagged with debugpacing panic instead.
package feedback

import "math"

type Channel struct {
	slots []uint32

	// The frame index that last wrote into each slot.
	owners  []uint64
	written []bool
}

// Create a new channel with one slot per frame in flight. A zero depth is
// treated as one.
func NewChannel(depth uint32) *Channel {
	if depth == 0 {
		depth = 1
	}

	return &Channel{
		slots:   make([]uint32, depth),
		owners:  make([]uint64, depth),
		written: make([]bool, depth),
	}
}

// Get the number of slots in the ring.
func (c *Channel) Depth() uint32 {
	return uint32(len(c.slots))
}

// Accumulate delta samples into the slot owned by frameIndex. Multiple passes
// within the same frame may contribute. The counter saturates instead of
// wrapping.
func (c *Channel) Write(frameIndex uint64, delta uint32) {
	slot := c.slotFor(frameIndex)

	sum := uint64(c.slots[slot]) + uint64(delta)
	if sum > math.MaxUint32 {
		sum = math.MaxUint32
	}
	c.slots[slot] = uint32(sum)

	c.owners[slot] = frameIndex
	c.written[slot] = true
}

// Read and clear the oldest slot relative to frameIndex, i.e. the slot that
// frameIndex+1 is about to reuse.
func (c *Channel) Drain(frameIndex uint64) uint32 {
	slot := c.slotFor(frameIndex + 1)
	checkDrain(c, frameIndex, slot)

	value := c.slots[slot]
	c.slots[slot] = 0
	c.written[slot] = false
	return value
}

// Clear all slots.
func (c *Channel) Reset() {
	for i := range c.slots {
		c.slots[i] = 0
		c.owners[i] = 0
		c.written[i] = false
	}
}

func (c *Channel) slotFor(frameIndex uint64) int {
	return int(frameIndex % uint64(len(c.slots)))
}
