package monitoring

import (
	"sync"
	"time"
)

// Tags annotate captured errors, typically with "module" and "user_id".
type Tags map[string]string

// UserTags returns tags for an error raised by module on behalf of userID.
func UserTags(module, userID string) Tags {
	t := Tags{"module": module}
	if userID != "" {
		t["user_id"] = userID
	}
	return t
}

// Monitor reports errors and scheduling breadcrumbs to an external service.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	// Breadcrumb records context attached to the next captured error.
	Breadcrumb(category, message string)
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Breadcrumb(string, string)                 {}
func (NopMonitor) Flush(time.Duration)                       {}

var (
	mu      sync.RWMutex
	current Monitor = NopMonitor{}
)

// Init sets the global monitor. A nil monitor restores the no-op one.
func Init(m Monitor) {
	if m == nil {
		m = NopMonitor{}
	}
	mu.Lock()
	current = m
	mu.Unlock()
}

func get() Monitor {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// CaptureException records the error with optional tags. Nil errors are
// ignored.
func CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	get().CaptureException(err, tags)
}

func Breadcrumb(category, message string) { get().Breadcrumb(category, message) }

// Recover captures panics in goroutines. It must be deferred directly.
func Recover() {
	if r := recover(); r != nil {
		get().CaptureException(panicError{r}, Tags{"module": "panic"})
		get().Flush(2 * time.Second)
		panic(r)
	}
}

// Flush flushes buffered events.
func Flush(d time.Duration) { get().Flush(d) }

type panicError struct{ v any }

func (p panicError) Error() string {
	if err, ok := p.v.(error); ok {
		return "panic: " + err.Error()
	}
	if s, ok := p.v.(string); ok {
		return "panic: " + s
	}
	return "panic"
}
