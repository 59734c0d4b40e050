package worker

import "sync"

// JobLocks serializes stage handlers per job. The pipeline topology
// already delivers one event at a time per job, but the transport may
// redeliver or dispatch out of order; the lock keeps the store's
// read-modify-write cycle single-writer regardless.
type JobLocks struct {
	mu    sync.Mutex
	locks map[string]*jobLock
}

type jobLock struct {
	mu   sync.Mutex
	refs int
}

func NewJobLocks() *JobLocks {
	return &JobLocks{locks: make(map[string]*jobLock)}
}

// Lock blocks until the caller owns the job and returns the release
// func. Entries are dropped once no handler holds or waits on them.
func (l *JobLocks) Lock(jobID string) func() {
	l.mu.Lock()
	e, ok := l.locks[jobID]
	if !ok {
		e = &jobLock{}
		l.locks[jobID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, jobID)
		}
		l.mu.Unlock()
	}
}
