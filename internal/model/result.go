package model

import "time"

// Status is the outcome of one scene in a run.
type Status int

const (
	StatusDownloaded Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDownloaded:
		return "downloaded"
	case StatusSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Result is the outcome of one scene.
type Result struct {
	Scene    *Scene
	Status   Status
	Bytes    int64
	Duration time.Duration
	Err      error
}

// OK reports whether the scene is present on disk after the run.
func (r Result) OK() bool {
	return r.Status != StatusFailed
}

// Report summarises one run.
type Report struct {
	Batch    *Batch
	Features int
	Results  []Result
}

// Count returns the number of results with the given status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// BytesReceived returns the total bytes written by downloaded scenes.
func (r *Report) BytesReceived() int64 {
	var total int64
	for _, res := range r.Results {
		if res.Status == StatusDownloaded {
			total += res.Bytes
		}
	}
	return total
}

// Failed returns the failed results in run order.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			failed = append(failed, res)
		}
	}
	return failed
}
