package value

import (
	"math"

	"github.com/google/uuid"
)

// Uuid wraps github.com/google/uuid's 128-bit value, promoted from the
// teacher's indirect dependency (pulled in transitively through
// testcontainers-go) to a direct one: the Value model's UUID scalar is the
// first place in this repo that actually needs RFC-4122 parsing/formatting.
type Uuid struct {
	inner uuid.UUID
}

func NewUuidV4() Uuid {
	return Uuid{inner: uuid.New()}
}

func ParseUuid(s string) (Uuid, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Uuid{}, err
	}
	return Uuid{inner: u}, nil
}

func (u Uuid) String() string { return u.inner.String() }

func (u Uuid) Bytes() []byte {
	b := u.inner
	return b[:]
}

func (u Uuid) Cmp(o Uuid) int {
	a, b := u.Bytes(), o.Bytes()
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Point is a 2-D coordinate.
type Point struct {
	X float64
	Y float64
}

// Distance returns the Euclidean distance between two points, carried over
// from original_source's data/point.rs helper (spec §9 "supplemented"
// feature — the Value model already carries Point, so leaving it without
// any arithmetic helper would be a defect).
func (p Point) Distance(o Point) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func (p Point) Cmp(o Point) int {
	switch {
	case p.X != o.X:
		if p.X < o.X {
			return -1
		}
		return 1
	case p.Y != o.Y:
		if p.Y < o.Y {
			return -1
		}
		return 1
	default:
		return 0
	}
}
