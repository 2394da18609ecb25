// Package either provides a two-variant container holding either a failure (left) or a success (right) value.
//
// Service operations return an [Either] so that callers must inspect which branch is populated before using a value:
//
//	result := service.PurgeIndexes(ctx, "people")
//	result.Match(
//		func(failure console.ActionResponse) { showBanner(failure.Message) },
//		func(success console.ActionResponse) { showToast(success.Message) },
//	)
package either

// Either holds exactly one of a left value of type L or a right value of type R.
// By convention left carries a failure and right carries a success.
//
// Values are immutable and must be constructed with [Left] or [Right].
type Either[L, R any] struct {
	left    L
	right   R
	isRight bool
}

// Left constructs an Either carrying a left (failure) value.
func Left[L, R any](value L) Either[L, R] {
	return Either[L, R]{left: value}
}

// Right constructs an Either carrying a right (success) value.
func Right[L, R any](value R) Either[L, R] {
	return Either[L, R]{right: value, isRight: true}
}

// IsLeft reports whether the left branch is populated.
func (e Either[L, R]) IsLeft() bool {
	return !e.isRight
}

// IsRight reports whether the right branch is populated.
func (e Either[L, R]) IsRight() bool {
	return e.isRight
}

// Left returns the left value and true if the left branch is populated, otherwise the zero value and false.
func (e Either[L, R]) Left() (L, bool) {
	if e.isRight {
		var zero L
		return zero, false
	}
	return e.left, true
}

// Right returns the right value and true if the right branch is populated, otherwise the zero value and false.
func (e Either[L, R]) Right() (R, bool) {
	if !e.isRight {
		var zero R
		return zero, false
	}
	return e.right, true
}

// Match calls exactly one of onLeft or onRight with the populated value.
func (e Either[L, R]) Match(onLeft func(L), onRight func(R)) {
	if e.isRight {
		onRight(e.right)
		return
	}
	onLeft(e.left)
}

// Fold reduces e to a single value by applying onLeft or onRight to the populated branch.
func Fold[L, R, T any](e Either[L, R], onLeft func(L) T, onRight func(R) T) T {
	if e.isRight {
		return onRight(e.right)
	}
	return onLeft(e.left)
}

// Map applies f to the right value. A left value is passed through unchanged.
func Map[L, R, S any](e Either[L, R], f func(R) S) Either[L, S] {
	if e.isRight {
		return Right[L](f(e.right))
	}
	return Left[L, S](e.left)
}

// FlatMap applies f to the right value and returns its result. A left value is passed through unchanged.
func FlatMap[L, R, S any](e Either[L, R], f func(R) Either[L, S]) Either[L, S] {
	if e.isRight {
		return f(e.right)
	}
	return Left[L, S](e.left)
}
