package core

import "errors"

var ErrNotFound = errors.New("greetform: not found")

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
