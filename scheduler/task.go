package scheduler

import "context"

// Task is a unit of work. Execute runs on a worker; Complete runs on the
// event loop after Execute has returned, or without Execute when the task is
// refused.
type Task interface {
	Execute(ctx context.Context) error
	Complete(err error)
}

// Preflighter is implemented by tasks that can fail before dispatch. A
// non-nil error completes the task without executing it.
type Preflighter interface {
	Preflight() error
}

// Kinded labels a task for logs and metrics.
type Kinded interface {
	Kind() string
}

// Laned is implemented by tasks that must not overlap with other tasks of the
// same lane. An empty key means no lane.
type Laned interface {
	LaneKey() string
}

// Poster delivers callbacks onto the caller's context. loop.EventLoop
// implements it.
type Poster interface {
	Post(fn func()) bool
}

// DefaultKind labels tasks that do not implement Kinded.
const DefaultKind = "task"

func kindOf(t Task) string {
	if k, ok := t.(Kinded); ok {
		if kind := k.Kind(); kind != "" {
			return kind
		}
	}
	return DefaultKind
}

func laneOf(t Task) string {
	if l, ok := t.(Laned); ok {
		return l.LaneKey()
	}
	return ""
}
