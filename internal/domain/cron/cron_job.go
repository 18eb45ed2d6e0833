package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/questx-lab/questengine/pkg/xcontext"
)

type CronJob interface {
	Do(context.Context)
	RunNow() bool
	Next() time.Time
}

// CronJobManager runs every registered job on its own schedule until the
// context passed to Start is cancelled. A job never overlaps with itself.
type CronJobManager struct {
	mutex sync.Mutex
	wait  sync.WaitGroup
	jobs  map[CronJob]*time.Timer
	runs  map[CronJob]int
}

func NewCronJobManager() *CronJobManager {
	return &CronJobManager{
		jobs: make(map[CronJob]*time.Timer),
		runs: make(map[CronJob]int),
	}
}

func (m *CronJobManager) Register(jobs ...CronJob) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, job := range jobs {
		m.jobs[job] = nil
	}
}

// Start blocks until ctx is done and every running job returned.
func (m *CronJobManager) Start(ctx context.Context) {
	xcontext.Logger(ctx).Infof("Cron job manager started")

	m.mutex.Lock()
	jobs := make([]CronJob, 0, len(m.jobs))
	for job := range m.jobs {
		jobs = append(jobs, job)
	}
	m.mutex.Unlock()

	for _, job := range jobs {
		if job.RunNow() {
			m.wait.Add(1)
			go func(job CronJob) {
				defer m.wait.Done()
				m.run(ctx, job)
			}(job)
		} else {
			m.schedule(ctx, job)
		}
	}

	<-ctx.Done()
	m.cancel()
	m.wait.Wait()

	xcontext.Logger(ctx).Infof("Cron job manager stopped")
}

// Runs returns how many times the job finished.
func (m *CronJobManager) Runs(job CronJob) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.runs[job]
}

func (m *CronJobManager) cancel() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, timer := range m.jobs {
		if timer != nil && timer.Stop() {
			m.wait.Done()
		}
	}

	// Jobs finishing after this point are not scheduled again.
	m.jobs = make(map[CronJob]*time.Timer)
}

func (m *CronJobManager) run(ctx context.Context, job CronJob) {
	if ctx.Err() != nil {
		return
	}

	name := fmt.Sprintf("%T", job)
	start := time.Now()
	xcontext.Logger(ctx).Infof("%s is running...", name)
	job.Do(ctx)
	xcontext.Logger(ctx).Infof("%s ok in %s", name, time.Since(start))

	m.mutex.Lock()
	m.runs[job]++
	m.mutex.Unlock()

	m.schedule(ctx, job)
}

func (m *CronJobManager) schedule(ctx context.Context, job CronJob) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.jobs[job]; !ok {
		return
	}

	delay := time.Until(job.Next())
	if delay < 0 {
		delay = 0
	}

	m.wait.Add(1)
	m.jobs[job] = time.AfterFunc(delay, func() {
		defer m.wait.Done()
		m.run(ctx, job)
	})
}
