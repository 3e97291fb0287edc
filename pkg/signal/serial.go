package signal

import "sync"

// serial runs submitted functions one at a time, in submission order. A
// function submitted while another is running, from the same goroutine or a
// different one, is queued and run by the goroutine already draining. This
// keeps per-mount combinator state consistent without holding a lock while
// emitting downstream, where an observer may feed the combinator again.
type serial struct {
	mu      sync.Mutex
	queue   []func()
	running bool
}

func (q *serial) do(fn func()) {
	q.mu.Lock()
	q.queue = append(q.queue, fn)
	if q.running {
		q.mu.Unlock()
		return
	}
	q.running = true
	q.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			q.mu.Lock()
			q.running = false
			q.queue = nil
			q.mu.Unlock()
			panic(r)
		}
	}()

	for {
		q.mu.Lock()
		if len(q.queue) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		next := q.queue[0]
		q.queue[0] = nil
		q.queue = q.queue[1:]
		q.mu.Unlock()

		next()
	}
}
