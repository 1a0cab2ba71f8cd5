package greeter

import (
	"context"
	"fmt"
)

const DefaultFormat = "Hello, %s!"

// Backend is the reference actor behind /api/greet. The name is used
// verbatim; an empty name still produces a greeting.
type Backend struct {
	Format string
}

func NewBackend(format string) *Backend {
	if format == "" {
		format = DefaultFormat
	}
	return &Backend{Format: format}
}

func (b *Backend) Greet(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", AsRemoteCallError("greet", err)
	}
	format := b.Format
	if format == "" {
		format = DefaultFormat
	}
	return fmt.Sprintf(format, name), nil
}
