package transport

import "sync"

// Loop is the single logical thread of control an exchange executes
// on. Every protocol step runs as a posted task, so buffer mutation is
// never concurrent; suspension happens only between tasks.
type Loop struct {
	tasks    chan func()
	stop     chan struct{}
	stopOnce sync.Once
}

func NewLoop() *Loop {
	return &Loop{
		tasks: make(chan func(), 64),
		stop:  make(chan struct{}),
	}
}

// Post queues fn for execution on the loop. It reports false, dropping
// fn, once the loop has been stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stop:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.stop:
		return false
	}
}

// Run executes posted tasks until Stop is called. It is the caller's
// goroutine that becomes the loop thread.
func (l *Loop) Run() {
	for {
		select {
		case <-l.stop:
			return
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Stop shuts the loop down. Pending and future posts are dropped. Safe
// to call multiple times and from loop tasks.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Stopped reports whether Stop has been called.
func (l *Loop) Stopped() bool {
	select {
	case <-l.stop:
		return true
	default:
		return false
	}
}
