package xio

import "time"

// quantileEstimator implements the P² algorithm for streaming quantile
// estimation: O(1) per observation and O(1) retrieval, without storing the
// observed values.
//
// Reference: Jain, R. and Chlamtac, I. (1985). "The P² Algorithm for
// Dynamic Calculation of Quantiles and Histograms Without Storing
// Observations". Communications of the ACM, 28(10), pp. 1076-1085.
//
// Not safe for concurrent use; SchedulerMetrics only ever touches it from
// the driver goroutine.
type quantileEstimator struct {
	p          float64
	q          [5]float64
	n          [5]int
	np         [5]float64
	dn         [5]float64
	count      int
	initBuffer [5]float64
}

func newQuantileEstimator(p float64) *quantileEstimator {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return &quantileEstimator{p: p, dn: [5]float64{0, p / 2, p, (1 + p) / 2, 1}}
}

func (e *quantileEstimator) Update(x float64) {
	e.count++

	if e.count <= 5 {
		e.initBuffer[e.count-1] = x
		if e.count == 5 {
			e.initialize()
		}
		return
	}

	var k int
	switch {
	case x < e.q[0]:
		e.q[0] = x
		k = 0
	case x >= e.q[4]:
		e.q[4] = x
		k = 3
	default:
		for k = 0; k < 4; k++ {
			if e.q[k] <= x && x < e.q[k+1] {
				break
			}
		}
	}

	for i := k + 1; i < 5; i++ {
		e.n[i]++
	}
	for i := 0; i < 5; i++ {
		e.np[i] += e.dn[i]
	}

	for i := 1; i < 4; i++ {
		d := e.np[i] - float64(e.n[i])
		if (d >= 1 && e.n[i+1]-e.n[i] > 1) || (d <= -1 && e.n[i-1]-e.n[i] < -1) {
			sign := 1
			if d < 0 {
				sign = -1
			}
			qPrime := e.parabolic(i, sign)
			if e.q[i-1] < qPrime && qPrime < e.q[i+1] {
				e.q[i] = qPrime
			} else {
				e.q[i] = e.linear(i, sign)
			}
			e.n[i] += sign
		}
	}
}

func (e *quantileEstimator) initialize() {
	for i := 1; i < 5; i++ {
		key := e.initBuffer[i]
		j := i - 1
		for j >= 0 && e.initBuffer[j] > key {
			e.initBuffer[j+1] = e.initBuffer[j]
			j--
		}
		e.initBuffer[j+1] = key
	}
	for i := 0; i < 5; i++ {
		e.q[i] = e.initBuffer[i]
		e.n[i] = i
	}
	e.np = [5]float64{0, 2 * e.p, 4 * e.p, 2 + 2*e.p, 4}
}

func (e *quantileEstimator) parabolic(i, d int) float64 {
	df := float64(d)
	ni := float64(e.n[i])
	niPrev := float64(e.n[i-1])
	niNext := float64(e.n[i+1])

	term1 := df / (niNext - niPrev)
	term2 := (ni - niPrev + df) * (e.q[i+1] - e.q[i]) / (niNext - ni)
	term3 := (niNext - ni - df) * (e.q[i] - e.q[i-1]) / (ni - niPrev)

	return e.q[i] + term1*(term2+term3)
}

func (e *quantileEstimator) linear(i, d int) float64 {
	if d == 1 {
		return e.q[i] + (e.q[i+1]-e.q[i])/float64(e.n[i+1]-e.n[i])
	}
	return e.q[i] - (e.q[i]-e.q[i-1])/float64(e.n[i]-e.n[i-1])
}

func (e *quantileEstimator) Quantile() float64 {
	if e.count == 0 {
		return 0
	}
	if e.count < 5 {
		sorted := make([]float64, e.count)
		copy(sorted, e.initBuffer[:e.count])
		for i := 1; i < e.count; i++ {
			key := sorted[i]
			j := i - 1
			for j >= 0 && sorted[j] > key {
				sorted[j+1] = sorted[j]
				j--
			}
			sorted[j+1] = key
		}
		index := int(float64(e.count-1) * e.p)
		if index >= e.count {
			index = e.count - 1
		}
		return sorted[index]
	}
	return e.q[2]
}

// SchedulerMetrics accumulates statistics about one Run's scheduling
// behaviour: how long each pass through the selector blocked, and how many
// tasks have started and failed. It is entirely single-threaded, since a
// scheduler instance never runs its driver loop from more than one
// goroutine (spec §9's no-thread-safety-needed guarantee), so unlike its
// teacher ancestor it carries no atomics or mutex.
//
// Attach one via [WithMetrics]; it is updated by [Run]'s driver loop and by
// Task lifecycle events, and is safe to read only after Run returns (or
// from the same goroutine that's driving Run, e.g. from a diagnostic task).
type SchedulerMetrics struct {
	waitTimes      *quantileEstimator
	waitTimesP99   *quantileEstimator
	selectorPasses int
	tasksStarted   int
	tasksFailed    int
	totalWait      time.Duration
	maxWait        time.Duration
}

// NewSchedulerMetrics creates an empty metrics collector tracking the p50
// and p99 selector wait-time quantiles.
func NewSchedulerMetrics() *SchedulerMetrics {
	return &SchedulerMetrics{
		waitTimes:    newQuantileEstimator(0.50),
		waitTimesP99: newQuantileEstimator(0.99),
	}
}

func (m *SchedulerMetrics) observeWait(d time.Duration) {
	if m == nil {
		return
	}
	m.selectorPasses++
	m.totalWait += d
	if d > m.maxWait {
		m.maxWait = d
	}
	ms := float64(d.Microseconds())
	m.waitTimes.Update(ms)
	m.waitTimesP99.Update(ms)
}

func (m *SchedulerMetrics) observeTaskStarted() {
	if m == nil {
		return
	}
	m.tasksStarted++
}

func (m *SchedulerMetrics) observeTaskFailed() {
	if m == nil {
		return
	}
	m.tasksFailed++
}

// SelectorPasses returns the number of times the driver loop blocked on the
// Selector.
func (m *SchedulerMetrics) SelectorPasses() int { return m.selectorPasses }

// TasksStarted returns the number of tasks that have begun running.
func (m *SchedulerMetrics) TasksStarted() int { return m.tasksStarted }

// TasksFailed returns the number of tasks that terminated with a failure
// that reached their owner.
func (m *SchedulerMetrics) TasksFailed() int { return m.tasksFailed }

// MedianWait returns the estimated p50 selector wait time.
func (m *SchedulerMetrics) MedianWait() time.Duration {
	return time.Duration(m.waitTimes.Quantile()) * time.Microsecond
}

// P99Wait returns the estimated p99 selector wait time.
func (m *SchedulerMetrics) P99Wait() time.Duration {
	return time.Duration(m.waitTimesP99.Quantile()) * time.Microsecond
}

// MaxWait returns the longest single selector wait observed.
func (m *SchedulerMetrics) MaxWait() time.Duration { return m.maxWait }

// TotalWait returns the cumulative time spent blocked in the selector.
func (m *SchedulerMetrics) TotalWait() time.Duration { return m.totalWait }
