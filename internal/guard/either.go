package guard

// Side tags which arm of an Either holds the value.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Either holds exactly one of a left or a right value. A guard yields Left
// when its condition does not hold and Right when it does.
type Either[L, R any] struct {
	side  Side
	left  L
	right R
}

func NewLeft[L, R any](v L) Either[L, R] {
	return Either[L, R]{side: Left, left: v}
}

func NewRight[L, R any](v R) Either[L, R] {
	return Either[L, R]{side: Right, right: v}
}

func (e Either[L, R]) Side() Side { return e.side }

func (e Either[L, R]) IsLeft() bool { return e.side == Left }

func (e Either[L, R]) IsRight() bool { return e.side == Right }

// Left returns the left value and whether e is a Left.
func (e Either[L, R]) Left() (L, bool) {
	return e.left, e.side == Left
}

// Right returns the right value and whether e is a Right.
func (e Either[L, R]) Right() (R, bool) {
	return e.right, e.side == Right
}

// Fold applies onLeft or onRight depending on the side of e.
func Fold[L, R, T any](e Either[L, R], onLeft func(L) T, onRight func(R) T) T {
	if e.side == Right {
		return onRight(e.right)
	}
	return onLeft(e.left)
}
