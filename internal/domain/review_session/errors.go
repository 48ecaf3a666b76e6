package reviewsession

import (
	"errors"
	"fmt"
)

var (
	ErrNoMatchingProblems = errors.New("no problems match the current filters")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidProblemID   = fmt.Errorf("%w: problem is not part of this session", ErrInvalidInput)
	ErrSessionClosed      = errors.New("session is no longer active")
)
