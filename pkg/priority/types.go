package priority

import (
	"context"
	"time"
)

// DeadlineLayout is the deadline format understood by the scoring service.
const DeadlineLayout = "2006-01-02 15:04"

// Request holds the task attributes a priority is derived from.
type Request struct {
	Category string
	Subject  string
	Deadline time.Time
}

// Scorer turns task attributes into a numeric priority. Higher is more urgent.
type Scorer interface {
	Score(ctx context.Context, req Request) (float64, error)
}
