package workers

import "context"

// Task is run over and over by a worker until the pool stops.
// OnFinish receives the result of every Do, including errors.
type Task interface {
	Do(context.Context) error
	OnFinish(context.Context, error)
}

type TaskImpl struct {
	function func(context.Context) error
	callback func(context.Context, error)
}

func NewTask(function func(context.Context) error, callback func(context.Context, error)) *TaskImpl {
	return &TaskImpl{
		function: function,
		callback: callback,
	}
}

func (t *TaskImpl) Do(ctx context.Context) error {
	return t.function(ctx)
}

func (t *TaskImpl) OnFinish(ctx context.Context, err error) {
	if t.callback != nil {
		t.callback(ctx, err)
	}
}
