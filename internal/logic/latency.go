package logic

import "time"

// Latency accumulates per-round reaction times for one player.
type Latency struct {
	total     time.Duration
	rounds    int
	last      time.Duration
	best      time.Duration
	anomalies int
}

// Accumulate adds a round's latency to the running total.
func (l *Latency) Accumulate(d time.Duration) {
	l.total += d
	l.rounds++
	l.last = d
	if l.rounds == 1 || d < l.best {
		l.best = d
	}
}

// Anomaly counts a round whose latency had to be clamped.
func (l *Latency) Anomaly() {
	l.anomalies++
}

// Summarize returns the total latency and number of accumulated rounds.
func (l *Latency) Summarize() (time.Duration, int) {
	return l.total, l.rounds
}

// Average returns the mean latency, or 0 when no rounds were recorded.
func (l *Latency) Average() time.Duration {
	if l.rounds == 0 {
		return 0
	}
	return l.total / time.Duration(l.rounds)
}

// Last returns the most recent latency.
func (l *Latency) Last() time.Duration {
	return l.last
}

// Best returns the fastest latency, or 0 when no rounds were recorded.
func (l *Latency) Best() time.Duration {
	return l.best
}

// Anomalies returns the number of clamped rounds.
func (l *Latency) Anomalies() int {
	return l.anomalies
}
