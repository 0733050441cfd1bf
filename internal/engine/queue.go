package engine

import "sync"

// opQueue serializes remote operations per identity key: one in-flight
// operation at a time, later operations wait for the prior one to settle
// before issuing. This closes the lost-update window between a slow create
// and a fast follow-up update for the same guest.
type opQueue struct {
	mu    sync.Mutex
	tails map[string]chan struct{}
}

func newOpQueue() *opQueue {
	return &opQueue{tails: make(map[string]chan struct{})}
}

// run schedules fn to execute after every previously queued operation for
// key has finished. It returns immediately; fn runs on its own goroutine and
// is tracked by wg.
func (q *opQueue) run(key string, wg *sync.WaitGroup, fn func()) {
	q.mu.Lock()
	prev := q.tails[key]
	done := make(chan struct{})
	q.tails[key] = done
	q.mu.Unlock()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if prev != nil {
			<-prev
		}
		fn()
		close(done)

		q.mu.Lock()
		if q.tails[key] == done {
			delete(q.tails, key)
		}
		q.mu.Unlock()
	}()
}
