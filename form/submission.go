package form

import (
	"context"

	"github.com/google/uuid"
)

// Submission is one round trip to the greeter.
type Submission struct {
	ID   uuid.UUID
	Name string

	done     chan struct{}
	greeting string
	err      error
}

// Done is closed once the greet call has settled and the view was updated.
func (s *Submission) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the submission settles or ctx is done. Giving up on ctx
// does not cancel the submission.
func (s *Submission) Wait(ctx context.Context) (string, error) {
	select {
	case <-s.done:
		return s.greeting, s.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Result returns the outcome; it is only meaningful after Done is closed.
func (s *Submission) Result() (string, error) {
	return s.greeting, s.err
}
