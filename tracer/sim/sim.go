// Package sim provides a simulated cache engine. It produces a synthetic,
// reproducible number of training samples for every dispatch and reports
// them through the feedback channel when the frame retires, modelling the
// latency of a GPU executing several frames behind the CPU.
package sim

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/achilleasa/radiance/cache/feedback"
	"github.com/achilleasa/radiance/cache/sizing"
	"github.com/achilleasa/radiance/log"
	"github.com/achilleasa/radiance/tracer"
	"github.com/achilleasa/radiance/types"
)

// Simulation parameters.
type Options struct {
	// Mean number of training records produced per training pixel.
	PathLength float64

	// Relative amplitude of the uniform noise applied to each frame's
	// sample count.
	Noise float64

	// Seed for the noise source.
	Seed int64

	// Limit the samples of a frame to its requested iteration budget.
	CapByIterations bool

	// Number of passes contributing to a frame's counter.
	Passes uint32

	// Simulated execution time per combined dispatch cell.
	CellTime time.Duration
}

// The order in which pending changes are applied.
var changeOrder = []tracer.ChangeType{
	tracer.SetFrameDimensions,
	tracer.SetFeedbackChannel,
	tracer.SetPathLength,
}

type frameJob struct {
	frameIndex uint64
	training   types.Extent
	samples    uint32
	execTime   time.Duration
}

type Tracer struct {
	logger log.Logger

	// The tracer id.
	id string

	opts Options
	rng  *rand.Rand

	initialized bool
	resolution  types.Extent

	// The channel retired frames report their sample counts to.
	channel *feedback.Channel

	// A buffer for queuing updates. Updates are grouped by type and
	// latest updates always overwrite the previous ones.
	updateBuffer map[tracer.ChangeType]interface{}

	// Submitted frames in dispatch order.
	inFlight []frameJob

	// Statistics for the last retired frame.
	stats *tracer.Stats
}

// Create a new simulated tracer.
func New(id string, opts Options) *Tracer {
	if opts.Passes == 0 {
		opts.Passes = 1
	}

	return &Tracer{
		logger:       log.New(fmt.Sprintf("sim tracer (%s)", id)),
		id:           id,
		opts:         opts,
		rng:          rand.New(rand.NewSource(opts.Seed)),
		updateBuffer: make(map[tracer.ChangeType]interface{}),
		stats:        &tracer.Stats{},
	}
}

// Get tracer id.
func (tr *Tracer) Id() string {
	return tr.id
}

// Setup the tracer for the given resolution. Any work still in flight is
// discarded.
func (tr *Tracer) Init(resolution types.Extent) error {
	if resolution.Area() == 0 {
		return fmt.Errorf("%w: empty resolution %s", tracer.ErrInvalidDispatch, resolution)
	}

	if len(tr.inFlight) != 0 {
		tr.logger.Debugf("discarding %d in-flight frame(s)", len(tr.inFlight))
	}
	tr.inFlight = tr.inFlight[:0]
	tr.resolution = resolution
	tr.initialized = true
	tr.logger.Infof("initialized for %s", resolution)
	return nil
}

// Shutdown and cleanup tracer.
func (tr *Tracer) Close() {
	tr.inFlight = nil
	tr.channel = nil
	tr.initialized = false
}

// Append a change to the tracer's update buffer.
func (tr *Tracer) AppendChange(changeType tracer.ChangeType, data interface{}) {
	tr.updateBuffer[changeType] = data
}

// Apply all pending changes from the update buffer.
func (tr *Tracer) ApplyPendingChanges() error {
	for changeType := range tr.updateBuffer {
		switch changeType {
		case tracer.SetFrameDimensions, tracer.SetFeedbackChannel, tracer.SetPathLength:
		default:
			return fmt.Errorf("%w: %d", tracer.ErrUnknownChange, changeType)
		}
	}

	for _, changeType := range changeOrder {
		data, ok := tr.updateBuffer[changeType]
		if !ok {
			continue
		}

		var err error
		switch changeType {
		case tracer.SetFrameDimensions:
			err = tr.Init(data.(types.Extent))
		case tracer.SetFeedbackChannel:
			// Frames submitted before the switch belong to the old channel.
			tr.inFlight = tr.inFlight[:0]
			tr.channel = data.(*feedback.Channel)
		case tracer.SetPathLength:
			tr.opts.PathLength = data.(float64)
			tr.logger.Infof("path length set to %.2f", tr.opts.PathLength)
		}

		if err != nil {
			return err
		}
	}

	tr.updateBuffer = make(map[tracer.ChangeType]interface{})
	return nil
}

// Submit the work for one frame.
func (tr *Tracer) Dispatch(req tracer.DispatchRequest) error {
	if !tr.initialized {
		return tracer.ErrNotInitialized
	}
	if err := req.Validate(); err != nil {
		return err
	}
	if req.Primary != tr.resolution {
		return fmt.Errorf("%w: primary extent %s does not match resolution %s", tracer.ErrInvalidDispatch, req.Primary, tr.resolution)
	}
	if n := len(tr.inFlight); n != 0 && tr.inFlight[n-1].frameIndex >= req.FrameIndex {
		return fmt.Errorf("%w: frame %d dispatched after frame %d", tracer.ErrInvalidDispatch, req.FrameIndex, tr.inFlight[n-1].frameIndex)
	}

	tr.inFlight = append(tr.inFlight, frameJob{
		frameIndex: req.FrameIndex,
		training:   req.Training,
		samples:    tr.yield(req),
		execTime:   time.Duration(req.Combined().Area()) * tr.opts.CellTime,
	})
	return nil
}

// Complete all frames up to and including frameIndex.
func (tr *Tracer) Retire(frameIndex uint64) error {
	if !tr.initialized {
		return tracer.ErrNotInitialized
	}

	retired := 0
	for _, job := range tr.inFlight {
		if job.frameIndex > frameIndex {
			break
		}
		tr.complete(job)
		retired++
	}
	tr.inFlight = tr.inFlight[:copy(tr.inFlight, tr.inFlight[retired:])]
	return nil
}

// Get the number of submitted frames that have not retired yet.
func (tr *Tracer) InFlight() int {
	return len(tr.inFlight)
}

// Retrieve engine statistics.
func (tr *Tracer) Stats() *tracer.Stats {
	return tr.stats
}

// Write the frame's samples to the feedback channel and update stats.
func (tr *Tracer) complete(job frameJob) {
	if tr.channel != nil {
		perPass := job.samples / tr.opts.Passes
		for pass := uint32(0); pass < tr.opts.Passes; pass++ {
			delta := perPass
			if pass == tr.opts.Passes-1 {
				delta = job.samples - perPass*(tr.opts.Passes-1)
			}
			tr.channel.Write(job.frameIndex, delta)
		}
	}

	observed := float64(job.samples) / float64(job.training.Area())
	if tr.stats.AvgPathLength == 0 {
		tr.stats.AvgPathLength = observed
	} else {
		tr.stats.AvgPathLength += (observed - tr.stats.AvgPathLength) / 16
	}
	tr.stats.Frame = job.frameIndex
	tr.stats.TrainingSamples = job.samples
	tr.stats.ExecTime = job.execTime
}

// Get the number of training samples produced by a request.
func (tr *Tracer) yield(req tracer.DispatchRequest) uint32 {
	samples := float64(req.Training.Area()) * tr.opts.PathLength
	if tr.opts.Noise > 0 {
		samples *= 1 + tr.opts.Noise*(2*tr.rng.Float64()-1)
	}
	if tr.opts.CapByIterations {
		samples = math.Min(samples, float64(req.Iterations)*sizing.RecordsPerIteration)
	}

	switch {
	case math.IsNaN(samples) || samples <= 0:
		return 0
	case samples >= math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(math.Round(samples))
}
