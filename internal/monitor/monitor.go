package monitor

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultHistoryLimit bounds the per-operation duration history.
const DefaultHistoryLimit = 100

type sample struct {
	duration time.Duration
	at       time.Time
}

// Monitor aggregates execution times, success/error counters and error
// kinds per named operation. It is constructed explicitly and shared by
// injection; all methods are safe for concurrent use.
type Monitor struct {
	mu       sync.Mutex
	limit    int
	times    map[string][]sample
	counters map[string]int // "<op>_<status>"
	errors   map[string]int // "<op>_<kind>"
}

func New(historyLimit int) *Monitor {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Monitor{
		limit:    historyLimit,
		times:    make(map[string][]sample),
		counters: make(map[string]int),
		errors:   make(map[string]int),
	}
}

// RecordExecutionTime appends a duration sample, evicting the oldest one
// once the history is full.
func (m *Monitor) RecordExecutionTime(op string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := append(m.times[op], sample{duration: d, at: time.Now()})
	if len(h) > m.limit {
		h = h[len(h)-m.limit:]
	}
	m.times[op] = h
}

// IncrementCounter bumps the per-operation counter for a status
// ("success" or "error").
func (m *Monitor) IncrementCounter(op, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[op+"_"+status]++
}

// RecordError counts one occurrence of an error kind for an operation.
func (m *Monitor) RecordError(op, kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[op+"_"+kind]++
}

// AverageExecutionTime is the mean over the retained history, zero when
// the operation has no samples.
func (m *Monitor) AverageExecutionTime(op string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.averageLocked(op)
}

func (m *Monitor) averageLocked(op string) time.Duration {
	h := m.times[op]
	if len(h) == 0 {
		return 0
	}
	var total time.Duration
	for _, s := range h {
		total += s.duration
	}
	return total / time.Duration(len(h))
}

// SuccessRate returns successes/(successes+errors)×100, or 0 when the
// operation was never called.
func (m *Monitor) SuccessRate(op string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.successRateLocked(op)
}

func (m *Monitor) successRateLocked(op string) float64 {
	success := m.counters[op+"_success"]
	failure := m.counters[op+"_error"]
	total := success + failure
	if total == 0 {
		return 0
	}
	return float64(success) / float64(total) * 100
}

// ServiceStats is the per-operation slice of a Summary.
type ServiceStats struct {
	AverageExecutionTime time.Duration `json:"average_execution_time"`
	SuccessRate          float64       `json:"success_rate"`
	TotalCalls           int           `json:"total_calls"`
}

// Summary is a point-in-time snapshot across all operations.
type Summary struct {
	Services    map[string]ServiceStats `json:"services"`
	TotalCalls  int                     `json:"total_calls"`
	TotalErrors int                     `json:"total_errors"`
}

func (m *Monitor) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	sum := Summary{Services: make(map[string]ServiceStats)}
	for _, v := range m.counters {
		sum.TotalCalls += v
	}
	for _, v := range m.errors {
		sum.TotalErrors += v
	}

	ops := make(map[string]bool)
	for key := range m.counters {
		if i := strings.LastIndex(key, "_"); i > 0 {
			ops[key[:i]] = true
		}
	}
	for op := range m.times {
		ops[op] = true
	}
	for op := range ops {
		sum.Services[op] = ServiceStats{
			AverageExecutionTime: m.averageLocked(op),
			SuccessRate:          m.successRateLocked(op),
			TotalCalls:           m.counters[op+"_success"] + m.counters[op+"_error"],
		}
	}
	return sum
}

// Report renders the summary as the text block appended to analysis
// reports. Operations are sorted so the output is stable.
func (m *Monitor) Report() string {
	sum := m.Summary()

	var b strings.Builder
	b.WriteString("=== ОТЧЕТ О ПРОИЗВОДИТЕЛЬНОСТИ ===\n")
	fmt.Fprintf(&b, "Общее количество вызовов: %d\n", sum.TotalCalls)
	fmt.Fprintf(&b, "Общее количество ошибок: %d\n\n", sum.TotalErrors)

	ops := make([]string, 0, len(sum.Services))
	for op := range sum.Services {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	for _, op := range ops {
		stats := sum.Services[op]
		fmt.Fprintf(&b, "Сервис: %s\n", op)
		fmt.Fprintf(&b, "  Среднее время выполнения: %.3fс\n", stats.AverageExecutionTime.Seconds())
		fmt.Fprintf(&b, "  Процент успешных вызовов: %.1f%%\n", stats.SuccessRate)
		fmt.Fprintf(&b, "  Общее количество вызовов: %d\n\n", stats.TotalCalls)
	}
	return b.String()
}

// Track times fn and records its outcome exactly once. The wrapped error
// is returned untouched so instrumentation never changes behavior.
func (m *Monitor) Track(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	m.RecordExecutionTime(op, time.Since(start))
	if err != nil {
		m.IncrementCounter(op, "error")
		m.RecordError(op, kindOf(err))
		return err
	}
	m.IncrementCounter(op, "success")
	return nil
}

func kindOf(err error) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
}
