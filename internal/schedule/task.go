package schedule

import "context"

// Task 定时执行的任务, Name 只用于日志
type Task interface {
	Run(ctx context.Context) error
	Name() string
}

type funcTask struct {
	name string
	fn   func(ctx context.Context) error
}

func (t funcTask) Run(ctx context.Context) error {
	return t.fn(ctx)
}

func (t funcTask) Name() string {
	return t.name
}

// Func wraps fn as a named Task.
func Func(name string, fn func(ctx context.Context) error) Task {
	return funcTask{name: name, fn: fn}
}
