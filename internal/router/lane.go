package router

// lanes tracks, per destination chat, whether a job is in flight and which
// jobs wait behind it. A lane holds at most one running job; the rest wait
// in FIFO order. Callers hold the router mutex.
type lanes struct {
	active map[int64]bool
	queued map[int64][]Job
}

func newLanes() *lanes {
	return &lanes{
		active: make(map[int64]bool),
		queued: make(map[int64][]Job),
	}
}

// admit reports whether job may run now. Otherwise it is queued behind
// the running job of its lane.
func (l *lanes) admit(job Job) bool {
	if !l.active[job.Lane] {
		l.active[job.Lane] = true
		return true
	}
	l.queued[job.Lane] = append(l.queued[job.Lane], job)
	return false
}

// next returns the job that follows a finished one on lane. When the lane
// is empty it is released.
func (l *lanes) next(lane int64) (Job, bool) {
	q := l.queued[lane]
	if len(q) == 0 {
		delete(l.active, lane)
		delete(l.queued, lane)
		return Job{}, false
	}
	job := q[0]
	q[0] = Job{}
	if len(q) == 1 {
		delete(l.queued, lane)
	} else {
		l.queued[lane] = q[1:]
	}
	return job, true
}

// drain removes every queued job.
func (l *lanes) drain() []Job {
	var out []Job
	for lane, q := range l.queued {
		out = append(out, q...)
		delete(l.queued, lane)
	}
	return out
}

// busy returns the number of lanes with a job in flight.
func (l *lanes) busy() int {
	return len(l.active)
}
