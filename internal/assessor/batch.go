package assessor

import (
	"context"
	"sync"
)

// Outcome is the result of one request in a batch.
type Outcome struct {
	Index   int
	Request Request
	Record  *Record
	Err     error
}

// AssessBatch runs requests on a pool of workers. Outcomes come back in the
// same order as requests. onDone, when set, is called once per finished
// request from the worker goroutines.
func (a *Assessor) AssessBatch(ctx context.Context, requests []Request, workers int, onDone func(Outcome)) []Outcome {
	if workers < 1 {
		workers = 1
	}
	if workers > len(requests) {
		workers = len(requests)
	}

	outcomes := make([]Outcome, len(requests))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rec, err := a.Assess(ctx, requests[i])
				out := Outcome{Index: i, Request: requests[i], Record: rec, Err: err}
				outcomes[i] = out
				if onDone != nil {
					onDone(out)
				}
			}
		}()
	}

	for i := range requests {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes
}
