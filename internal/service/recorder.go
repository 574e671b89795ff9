package service

import "time"

// Recorder receives engine measurements. internal/metrics provides the
// Prometheus implementation.
type Recorder interface {
	ScheduleGenerated(kind string, matches int, elapsed time.Duration)
	ScheduleFailed(kind string, reason string)
	StandingsComputed(rows int, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ScheduleGenerated(string, int, time.Duration) {}
func (nopRecorder) ScheduleFailed(string, string)                {}
func (nopRecorder) StandingsComputed(int, time.Duration)         {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
