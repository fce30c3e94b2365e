package session

import "sync"

// Store owns the session state tree. All mutations are pure State → State
// functions applied one at a time by a single consumer goroutine, so no two
// transitions race on the tree. Results of concurrent async operations are
// committed in completion order, not dispatch order: a slow earlier load
// resolving after a newer one overwrites it (last-completed-wins). That
// reordering hazard is inherited behavior, kept deliberately; see DESIGN.md.
type Store struct {
	mu    sync.RWMutex
	state State
	queue chan mutation
	done  chan struct{}
}

type mutation struct {
	apply   func(State) State
	applied chan struct{}
}

// NewStore returns a store with an empty state tree and starts its
// mutation consumer.
func NewStore() *Store {
	s := &Store{
		queue: make(chan mutation),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Store) run() {
	defer close(s.done)
	for m := range s.queue {
		s.mu.Lock()
		s.state = m.apply(s.state)
		s.mu.Unlock()
		close(m.applied)
	}
}

// Commit enqueues a mutation and returns once it has been applied. Commits
// from concurrent goroutines are serialized in arrival order.
func (s *Store) Commit(apply func(State) State) {
	m := mutation{apply: apply, applied: make(chan struct{})}
	s.queue <- m
	<-m.applied
}

// Snapshot returns the current state tree by value.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Close stops the mutation consumer. Commit must not be called afterwards.
func (s *Store) Close() {
	close(s.queue)
	<-s.done
}
