package order

import "time"

// Recorder принимает метрики оформления заказов.
type Recorder interface {
	RecordOrderCreated(lines, units int)
	RecordOrderRejected(reason string)
	ObserveCreateDuration(d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordOrderCreated(int, int) {}
func (nopRecorder) RecordOrderRejected(string) {}
func (nopRecorder) ObserveCreateDuration(time.Duration) {}
