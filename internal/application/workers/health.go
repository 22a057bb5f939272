package workers

import "time"

// HealthStatus represents the health status of the worker pool
type HealthStatus struct {
	TotalWorkers   int       `json:"total_workers"`
	IdleWorkers    int       `json:"idle_workers"`
	BusyWorkers    int       `json:"busy_workers"`
	StoppedWorkers int       `json:"stopped_workers"`
	LastJob        time.Time `json:"last_job,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Status samples the current worker states.
func (p *Pool) Status() *HealthStatus {
	status := &HealthStatus{
		TotalWorkers: len(p.workers),
		Timestamp:    time.Now(),
	}

	for _, w := range p.workers {
		w.mu.RLock()
		switch w.status {
		case WorkerStatusIdle:
			status.IdleWorkers++
		case WorkerStatusBusy:
			status.BusyWorkers++
		case WorkerStatusStopped:
			status.StoppedWorkers++
		}
		if w.lastJob.After(status.LastJob) {
			status.LastJob = w.lastJob
		}
		w.mu.RUnlock()
	}

	return status
}

// Busy reports whether a batch is currently running.
func (p *Pool) Busy() bool {
	return p.Status().StoppedWorkers < p.size
}
