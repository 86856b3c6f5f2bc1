package usecase

import "context"

type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// State is one element of a response stream: loading first, then exactly
// one success or error.
type State[T any] struct {
	Phase   Phase  `json:"phase"`
	Data    T      `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

func (s State[T]) Terminal() bool {
	return s.Phase != PhaseLoading
}

// stream emits loading before returning, runs fetch in the background and
// closes the channel after the terminal state. The buffer holds both states,
// so an abandoned stream never blocks the worker.
func stream[T any](ctx context.Context, fetch func(context.Context) (T, error)) <-chan State[T] {
	ch := make(chan State[T], 2)
	ch <- State[T]{Phase: PhaseLoading}

	go func() {
		defer close(ch)
		data, err := fetch(ctx)
		if err != nil {
			ch <- State[T]{Phase: PhaseError, Message: err.Error(), Err: err}
			return
		}
		ch <- State[T]{Phase: PhaseSuccess, Data: data}
	}()

	return ch
}

// Await drains a stream and returns its terminal state.
func Await[T any](ch <-chan State[T]) State[T] {
	var last State[T]
	for st := range ch {
		last = st
	}
	return last
}
