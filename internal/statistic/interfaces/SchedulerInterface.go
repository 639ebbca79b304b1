package interfaces

import "time"

type SchedulerInterface interface {
	Init()
	Stop()
	Refresh()
}

// StatusInterface is the last snapshot taken by the scheduler.
type StatusInterface interface {
	StoreHealthy() bool
	Totals() map[string]int64
	LastRefresh() time.Time
}
