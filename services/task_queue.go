package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Task is a unit of background work. Its error is logged and dropped.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// TaskQueue runs fire-and-forget work on a fixed set of workers.
// Submit never blocks: when the buffer is full the task is dropped.
type TaskQueue struct {
	tasks       chan Task
	taskTimeout time.Duration
	wg          sync.WaitGroup
	mutex       sync.RWMutex
	closed      bool
}

func NewTaskQueue(size, workers int, taskTimeout time.Duration) *TaskQueue {
	if size <= 0 {
		size = 100
	}
	if workers <= 0 {
		workers = 1
	}

	q := &TaskQueue{
		tasks:       make(chan Task, size),
		taskTimeout: taskTimeout,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	return q
}

// Submit enqueues t and reports whether it was accepted
func (q *TaskQueue) Submit(t Task) bool {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	if q.closed {
		logrus.WithFields(logrus.Fields{
			"component": "TaskQueue",
			"task":      t.Name,
		}).Warn("Task queue is shut down, dropping task")
		return false
	}

	select {
	case q.tasks <- t:
		return true
	default:
		logrus.WithFields(logrus.Fields{
			"component": "TaskQueue",
			"task":      t.Name,
		}).Warn("Task queue full, dropping task")
		return false
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish or ctx to expire
func (q *TaskQueue) Shutdown(ctx context.Context) error {
	q.mutex.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mutex.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logrus.WithField("component", "TaskQueue").Info("Task queue drained")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *TaskQueue) worker(id int) {
	defer q.wg.Done()

	for t := range q.tasks {
		q.run(id, t)
	}
}

func (q *TaskQueue) run(workerID int, t Task) {
	logger := logrus.WithFields(logrus.Fields{
		"component": "TaskQueue",
		"worker":    workerID,
		"task":      t.Name,
	})

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Task panicked: %v", r)
		}
	}()

	ctx := context.Background()
	if q.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.taskTimeout)
		defer cancel()
	}

	if err := t.Run(ctx); err != nil {
		logger.WithError(err).Warn("Background task failed")
	}
}
