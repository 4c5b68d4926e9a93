package remote

type State string

const (
	StateLoading State = "loading"
	StateError   State = "error"
	StateSuccess State = "success"
)

// Result is the view of a query a page renders from.
type Result[T any] struct {
	State State  `json:"state"`
	Data  T      `json:"data"`
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

func Loading[T any]() Result[T] {
	return Result[T]{State: StateLoading}
}

func Failure[T any](err error) Result[T] {
	return Result[T]{State: StateError, Err: err, Error: err.Error()}
}

func Success[T any](v T) Result[T] {
	return Result[T]{State: StateSuccess, Data: v}
}

func (r Result[T]) IsLoading() bool { return r.State == StateLoading }
func (r Result[T]) IsError() bool   { return r.State == StateError }
func (r Result[T]) IsSuccess() bool { return r.State == StateSuccess }
