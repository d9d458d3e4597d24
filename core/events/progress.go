package events

import "time"

// ProgressEvent reports the best solution found so far.
type ProgressEvent struct {
	RunID        string
	Elapsed      time.Duration
	BestScore    float64
	BestAssigned int
	Nodes        int64
}

// ResultEvent marks the end of a solve run.
type ResultEvent struct {
	RunID   string
	Status  string
	Runtime time.Duration
}
