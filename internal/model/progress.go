package model

// ProgressSink receives progress updates from nested phases of a running job.
// It is the only channel by which a job's progress message is updated
// mid-phase. Implementations must be safe for concurrent use.
type ProgressSink interface {
	Publish(p Progress)
}

// ProgressFunc adapts a function to the ProgressSink interface.
type ProgressFunc func(p Progress)

// Publish calls f(p).
func (f ProgressFunc) Publish(p Progress) { f(p) }

// NopSink discards all progress updates.
var NopSink ProgressSink = ProgressFunc(func(Progress) {})
