//go:build debugpacing

package feedback

import "fmt"

// Panic if the slot being drained was written by a frame newer than the one
// that owned it a full ring cycle ago.
func checkDrain(c *Channel, frameIndex uint64, slot int) {
	if !c.written[slot] {
		return
	}

	depth := uint64(len(c.slots))
	var expOwner uint64
	if frameIndex+1 >= depth {
		expOwner = frameIndex + 1 - depth
	}

	if c.owners[slot] > expOwner {
		panic(fmt.Sprintf(
			"feedback: pipeline overrun while draining frame %d: slot %d written by frame %d, expected frame %d or older",
			frameIndex, slot, c.owners[slot], expOwner,
		))
	}
}
