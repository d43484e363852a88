package finder

import "sync"

// task is a directory pending expansion.
type task struct {
	entry Entry
}

// frontier is the multi-producer multi-consumer queue of directories
// awaiting expansion. Termination is detected with an outstanding-task
// counter: every push increments it and every completed expansion
// decrements it, so a worker blocked in pop cannot conclude "no more work"
// while a sibling is still about to enqueue subdirectories.
type frontier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []task
	pending int
	closed  bool
}

func newFrontier() *frontier {
	f := &frontier{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// push enqueues a task. It never blocks. Pushes after close are dropped,
// which lets workers finish their current expansion during cancellation.
func (f *frontier) push(t task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.queue = append(f.queue, t)
	f.pending++
	f.cond.Signal()
}

// pop blocks while work may still arrive. It returns false only once the
// frontier is closed or drained: empty queue and zero outstanding tasks.
func (f *frontier) pop() (task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for {
		if f.closed {
			return task{}, false
		}
		if len(f.queue) > 0 {
			t := f.queue[0]
			f.queue = f.queue[1:]
			return t, true
		}
		if f.pending == 0 {
			return task{}, false
		}
		f.cond.Wait()
	}
}

// done marks a popped task as fully processed. When the last outstanding
// task completes every blocked worker is released.
func (f *frontier) done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending--
	if f.pending == 0 {
		f.cond.Broadcast()
	}
}

// close drops queued work and releases all blocked workers. Used for
// external cancellation.
func (f *frontier) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.queue = nil
	f.cond.Broadcast()
}
