package jobs

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fenilmodi00/sahayak-backend/models"
	"github.com/sirupsen/logrus"
)

// Ingester is the part of the ingestion service the job drives
type Ingester interface {
	RunIngestion(ctx context.Context) (*models.IngestionSummary, error)
}

// SchemeIngestionJob runs ingestion on a fixed interval. The first run happens one interval after Start.
// A zero Timeout leaves each run bounded only by the collaborators' own timeouts.
type SchemeIngestionJob struct {
	Ingester Ingester
	Timeout  time.Duration

	running atomic.Bool
	started atomic.Bool
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewSchemeIngestionJob(ingester Ingester, timeout time.Duration) *SchemeIngestionJob {
	return &SchemeIngestionJob{
		Ingester: ingester,
		Timeout:  timeout,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (j *SchemeIngestionJob) Start(interval time.Duration) {
	if !j.started.CompareAndSwap(false, true) {
		return
	}
	logrus.Infof("Starting Scheme Ingestion Job (runs every %v)...", interval)
	ticker := time.NewTicker(interval)

	go func() {
		defer close(j.done)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.Run()
			case <-j.stop:
				return
			}
		}
	}()
}

// Stop ends the ticker loop and waits for an in-flight run to return
func (j *SchemeIngestionJob) Stop() {
	j.once.Do(func() {
		close(j.stop)
	})
	if j.started.Load() {
		<-j.done
	}
}

// Run performs one ingestion. A tick that arrives while a run is in progress is skipped.
func (j *SchemeIngestionJob) Run() {
	if !j.running.CompareAndSwap(false, true) {
		logrus.Warn("Scheme Ingestion Job: previous run still in progress, skipping")
		return
	}
	defer j.running.Store(false)

	startTime := time.Now()
	logrus.Info("Running Scheme Ingestion Job...")

	ctx := context.Background()
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	summary, err := j.Ingester.RunIngestion(ctx)
	if err != nil {
		logrus.Errorf("Scheme Ingestion Job failed: %v", err)
		return
	}

	logrus.Infof("Scheme Ingestion Job completed: %d scraped, %d new (took %v)",
		summary.TotalScraped, summary.NewSchemesAdded, time.Since(startTime))
}
