package scheduler

import "context"

// Report summarizes one job execution. Jobs tolerate per-identity
// failures, so a run can succeed overall while skipping some rows.
type Report struct {
	Upserted int   `json:"upserted"`
	Skipped  int   `json:"skipped"`
	Pruned   int64 `json:"pruned"`
}

// Job is a periodic task. Run must be safe to call from the timer and
// manually at the same time: overlapping executions of the same job are
// rejected with domain.ErrJobAlreadyRuns, never interleaved.
type Job interface {
	Name() string
	Run(ctx context.Context) (Report, error)
}

// identityFromUsageKey extracts the identity segment from a
// "{domain}_usage:{identity}:{scope}" Fast Store key.
func identityFromUsageKey(key string) (string, bool) {
	first := -1
	last := -1
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 || last == first {
		return "", false
	}
	identity := key[first+1 : last]
	return identity, identity != ""
}
