package checkout

type Step string

const (
	StepTokenize     Step = "tokenize"
	StepCreateIntent Step = "create_intent"
	StepConfirm      Step = "confirm"
)

// StepResult is the tagged outcome of one protocol step. Exactly one of
// Value and Err is meaningful.
type StepResult[T any] struct {
	Step  Step
	Value T
	Err   error
}

func ok[T any](step Step, v T) StepResult[T] {
	return StepResult[T]{Step: step, Value: v}
}

func failed[T any](step Step, err error) StepResult[T] {
	return StepResult[T]{Step: step, Err: err}
}

func (r StepResult[T]) Failed() bool { return r.Err != nil }
