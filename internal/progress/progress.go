// Package progress provides the progress/cancellation surface the pipeline
// driver polls, grounded on kfilt.go's use of github.com/cheggaaa/pb/v3
// for its own read-streaming loops.
package progress

import "github.com/cheggaaa/pb/v3"

// Reporter is the progress/cancellation interface consumed by the
// pipeline driver. The real archive/UI implementation is external to this
// module; this interface is the seam.
type Reporter interface {
	SetTasks(task, subtask string)
	SetSubtask(subtask string)
	SetMaximum(n int64)
	SetProgress(n int64)
	IsUserCancelled() bool
	SetCancelable(bool)
	ReportTaskCompleted()
}

// NopReporter is a no-op Reporter for library callers and tests.
type NopReporter struct{}

func (NopReporter) SetTasks(string, string)   {}
func (NopReporter) SetSubtask(string)         {}
func (NopReporter) SetMaximum(int64)          {}
func (NopReporter) SetProgress(int64)         {}
func (NopReporter) IsUserCancelled() bool     { return false }
func (NopReporter) SetCancelable(bool)        {}
func (NopReporter) ReportTaskCompleted()      {}

// CancelFunc wraps an arbitrary cancellation check used alongside a
// Reporter, e.g. to have a bar-backed Reporter also honor a context.
type CancelFunc func() bool

// PBReporter reports progress via a cheggaaa/pb/v3 bar, the same package
// kfilt.go drives with pb.Full.Start64/bar.Increment/bar.Finish.
type PBReporter struct {
	bar        *pb.ProgressBar
	task       string
	subtask    string
	cancelled  bool
	cancelable bool
	Cancel     CancelFunc
}

// NewPBReporter creates a reporter that hasn't started a bar yet; SetMaximum
// starts it, matching kfilt.go's pattern of deferring bar creation until
// the total record count is known.
func NewPBReporter() *PBReporter {
	return &PBReporter{cancelable: true}
}

func (r *PBReporter) SetTasks(task, subtask string) {
	r.task, r.subtask = task, subtask
}

func (r *PBReporter) SetSubtask(subtask string) {
	r.subtask = subtask
}

func (r *PBReporter) SetMaximum(n int64) {
	if r.bar != nil {
		r.bar.Finish()
	}
	r.bar = pb.Full.Start64(n)
	r.bar.Set(pb.Bytes, false)
}

func (r *PBReporter) SetProgress(n int64) {
	if r.bar != nil {
		r.bar.SetCurrent(n)
	}
	if r.Cancel != nil && r.Cancel() {
		r.cancelled = true
	}
}

// IsUserCancelled reports a cancellation request only while cancellation is
// still honored; SetCancelable(false) (commit has begun) makes this
// unconditionally false regardless of any pending request.
func (r *PBReporter) IsUserCancelled() bool { return r.cancelable && r.cancelled }

func (r *PBReporter) SetCancelable(v bool) { r.cancelable = v }

func (r *PBReporter) ReportTaskCompleted() {
	if r.bar != nil {
		r.bar.Finish()
		r.bar = nil
	}
}
