// Package domain defines the recurring processing engine contract.
package domain

import "context"

// Result summarizes one processing pass. A series that was looked at but
// required no action (out of horizon, already booked, terminal) counts in
// neither bucket.
type Result struct {
	Created int `json:"created"`
	Failed  int `json:"failed"`
}

// Service is the single entry point the scheduler drives.
type Service interface {
	// ProcessDue walks every active series once: due-occurrence detection,
	// conflict check, booking creation, customer notification, counter
	// update. One series failing never aborts the batch; a failing batch
	// query returns a zero Result and the error.
	ProcessDue(ctx context.Context) (Result, error)
}
