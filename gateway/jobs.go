package gateway

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smnsjas/go-wps/job"
	"github.com/smnsjas/go-wps/model"
)

type jobEntry struct {
	id        string
	processID string
	created   time.Time
	job       *job.Job
}

func (e *jobEntry) view() JobView {
	info := e.job.Info()
	return JobView{
		ID:               e.id,
		ProcessID:        e.processID,
		JobID:            e.job.ID(),
		Status:           info.Status,
		Created:          e.created,
		PercentCompleted: info.PercentCompleted,
		NextPoll:         info.NextPoll,
		ExpirationDate:   info.ExpirationDate,
	}
}

// jobStore keeps jobs for the lifetime of the process.
type jobStore struct {
	mu    sync.RWMutex
	jobs  map[string]*jobEntry
	order []string
	now   func() time.Time
}

func newJobStore() *jobStore {
	return &jobStore{jobs: make(map[string]*jobEntry), now: time.Now}
}

func (s *jobStore) add(processID string, j *job.Job) *jobEntry {
	e := &jobEntry{
		id:        uuid.NewString(),
		processID: processID,
		created:   s.now().UTC(),
		job:       j,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[e.id] = e
	s.order = append(s.order, e.id)
	return e
}

func (s *jobStore) get(id string) (*jobEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.jobs[id]
	return e, ok
}

// list returns jobs in creation order, optionally filtered by status.
func (s *jobStore) list(status model.Status) []*jobEntry {
	s.mu.RLock()
	ids := slices.Clone(s.order)
	s.mu.RUnlock()

	out := make([]*jobEntry, 0, len(ids))
	for _, id := range ids {
		e, _ := s.get(id)
		if status != "" && e.job.Status() != status {
			continue
		}
		out = append(out, e)
	}
	return out
}
