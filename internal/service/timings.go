package service

import "time"

// LockTimings таймауты распределенных мьютексов воркфлоу. Wait сколько ждать
// захвата, Lease через сколько лок истечет сам, если держатель умер.
type LockTimings struct {
	OrderWait  time.Duration
	OrderLease time.Duration
	PointWait  time.Duration
	PointLease time.Duration
}

func DefaultLockTimings() LockTimings {
	return LockTimings{
		OrderWait:  10 * time.Second,
		OrderLease: 10 * time.Second,
		PointWait:  5 * time.Second,
		PointLease: 3 * time.Second,
	}
}
