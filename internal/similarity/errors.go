package similarity

import (
	"errors"
	"fmt"
)

var (
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrInvalidVector     = errors.New("invalid vector")
	ErrTooManyVectors    = errors.New("too many vectors")
)

// DimensionMismatchError reports the first vector whose length differs from vector 0.
type DimensionMismatchError struct {
	Index int
	Want  int
	Got   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding %d has dimension %d, expected %d", e.Index, e.Got, e.Want)
}

func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// InvalidVectorError reports a vector similarity cannot be computed against:
// empty, zero norm or carrying a non-finite component.
type InvalidVectorError struct {
	Index  int
	Reason string
}

func (e *InvalidVectorError) Error() string {
	return fmt.Sprintf("embedding %d is invalid: %s", e.Index, e.Reason)
}

func (e *InvalidVectorError) Is(target error) bool {
	return target == ErrInvalidVector
}

type TooManyVectorsError struct {
	Count int
	Limit int
}

func (e *TooManyVectorsError) Error() string {
	return fmt.Sprintf("%d embeddings exceed the limit of %d for pairwise comparison", e.Count, e.Limit)
}

func (e *TooManyVectorsError) Is(target error) bool {
	return target == ErrTooManyVectors
}
