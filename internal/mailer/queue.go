package mailer

import (
	"sync"

	"github.com/oboteam/guarantor-backend/pkg/logger"
)

// Job is one outbound email
type Job struct {
	To      string
	Subject string
	Body    string
}

// Enqueuer is the part of the queue exposed to services
type Enqueuer interface {
	Enqueue(job Job) bool
}

// Queue drains email jobs through a fixed pool of workers. Enqueue never
// blocks the HTTP request path: a full queue drops the job and logs it, and
// delivery failures are logged by the worker, not surfaced to the caller.
type Queue struct {
	sender  Sender
	jobs    chan Job
	workers int
	wg      sync.WaitGroup
}

func NewQueue(sender Sender, workers, capacity int) *Queue {
	if workers <= 0 {
		workers = 1
	}
	if capacity <= 0 {
		capacity = 100
	}
	return &Queue{
		sender:  sender,
		jobs:    make(chan Job, capacity),
		workers: workers,
	}
}

// Start launches the worker pool
func (q *Queue) Start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	logger.Info("Mail queue started", map[string]interface{}{
		"workers":  q.workers,
		"capacity": cap(q.jobs),
	})
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for job := range q.jobs {
		if err := q.sender.Send(job.To, job.Subject, job.Body); err != nil {
			logger.Error("Mail delivery failed", err, map[string]interface{}{
				"to":      job.To,
				"subject": job.Subject,
			})
		}
	}
}

// Enqueue schedules a job for delivery. Returns false if the queue is full.
func (q *Queue) Enqueue(job Job) bool {
	select {
	case q.jobs <- job:
		return true
	default:
		logger.Error("Mail queue is full, dropping job", nil, map[string]interface{}{
			"to":      job.To,
			"subject": job.Subject,
		})
		return false
	}
}

// Stop closes the queue and waits for in-flight deliveries to finish
func (q *Queue) Stop() {
	close(q.jobs)
	q.wg.Wait()
	logger.Info("Mail queue stopped")
}
