// Package greeter defines the remote greeting capability the form handler
// awaits, a reference backend actor, and an HTTP transport to reach one.
package greeter

import (
	"context"
	"errors"
	"fmt"
)

// Greeter is the remote actor's single method: greet(name) -> string.
type Greeter interface {
	Greet(ctx context.Context, name string) (string, error)
}

// Func adapts a plain function to Greeter.
type Func func(ctx context.Context, name string) (string, error)

func (f Func) Greet(ctx context.Context, name string) (string, error) {
	return f(ctx, name)
}

var ErrRemoteCall = errors.New("greeter: remote call failed")

// RemoteCallError is the one failure kind a greet call can settle with.
// Status is the HTTP status when the actor answered, zero otherwise.
type RemoteCallError struct {
	Op     string
	Status int
	Err    error
}

func (e *RemoteCallError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("greeter: %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("greeter: %s: %v", e.Op, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

func (e *RemoteCallError) Is(target error) bool {
	return target == ErrRemoteCall
}

// AsRemoteCallError wraps err as a RemoteCallError unless it already is one.
func AsRemoteCallError(op string, err error) error {
	if err == nil {
		return nil
	}
	var rce *RemoteCallError
	if errors.As(err, &rce) {
		return err
	}
	return &RemoteCallError{Op: op, Err: err}
}
