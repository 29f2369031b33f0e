package repositories

import (
	"sort"

	"github.com/me-odo/spotify-auto-playlists/internal/cache"
	"github.com/me-odo/spotify-auto-playlists/internal/models"
)

// JobStore persists pipeline job records keyed by job id.
//
// Every state transition goes through Put, which rewrites the whole jobs
// document; the atomic cache contract keeps concurrent pollers from ever
// seeing a half-written record.
type JobStore struct {
	store cache.Store
}

// NewJobStore creates a JobStore over the given document cache.
func NewJobStore(store cache.Store) *JobStore {
	return &JobStore{store: store}
}

// Load returns all persisted jobs keyed by id.
func (s *JobStore) Load() (map[string]models.PipelineJob, error) {
	jobs := map[string]models.PipelineJob{}
	if err := s.store.Get(DocJobs, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// Get returns the job with the given id, or false when unknown.
func (s *JobStore) Get(id string) (models.PipelineJob, bool, error) {
	jobs, err := s.Load()
	if err != nil {
		return models.PipelineJob{}, false, err
	}
	job, ok := jobs[id]
	return job, ok, nil
}

// Put inserts or replaces a single job record and persists the document.
func (s *JobStore) Put(job models.PipelineJob) error {
	jobs, err := s.Load()
	if err != nil {
		return err
	}
	jobs[job.ID] = job
	return s.store.Put(DocJobs, jobs)
}

// List returns all jobs ordered by creation time, oldest first.
func (s *JobStore) List() ([]models.PipelineJob, error) {
	jobs, err := s.Load()
	if err != nil {
		return nil, err
	}

	list := make([]models.PipelineJob, 0, len(jobs))
	for _, job := range jobs {
		list = append(list, job)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}
