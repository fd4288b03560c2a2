package layout

// FloatSide is the side a float is attached to.
type FloatSide int

const (
	FloatLeft FloatSide = iota
	FloatRight
)

// Clear selects which floats a clearance query considers.
type Clear int

const (
	ClearNone Clear = iota
	ClearLeft
	ClearRight
	ClearBoth
)

// ParseClear maps a CSS clear keyword.
func ParseClear(v string) Clear {
	switch v {
	case "left":
		return ClearLeft
	case "right":
		return ClearRight
	case "both":
		return ClearBoth
	}
	return ClearNone
}

type floatRect struct {
	side FloatSide
	rect Rect
}

// FloatList records placed floats by their margin boxes and answers
// clearance and line narrowing queries. Block and inline layout do not
// consult it yet.
type FloatList struct {
	floats []floatRect
}

// Insert records a float's margin box.
func (l *FloatList) Insert(side FloatSide, r Rect) {
	l.floats = append(l.floats, floatRect{side: side, rect: r})
}

// Len returns the number of recorded floats.
func (l *FloatList) Len() int { return len(l.floats) }

// Clearance returns the y content must move to so that it sits below every
// float selected by clear. It is y itself when nothing needs clearing.
func (l *FloatList) Clearance(y float64, clear Clear) float64 {
	out := y
	for _, f := range l.floats {
		if !clears(clear, f.side) {
			continue
		}
		if b := f.rect.Bottom(); b > out {
			out = b
		}
	}
	return out
}

func clears(c Clear, side FloatSide) bool {
	switch c {
	case ClearBoth:
		return true
	case ClearLeft:
		return side == FloatLeft
	case ClearRight:
		return side == FloatRight
	}
	return false
}

// LineSegment narrows the horizontal band [left, left+width) of a line
// spanning [y, y+height) by the floats overlapping it.
func (l *FloatList) LineSegment(y, height, left, width float64) (float64, float64) {
	x, right := left, left+width
	bottom := y + height
	for _, f := range l.floats {
		if f.rect.Y >= bottom || f.rect.Bottom() <= y || f.rect.Height == 0 {
			continue
		}
		switch f.side {
		case FloatLeft:
			if r := f.rect.Right(); r > x {
				x = r
			}
		case FloatRight:
			if f.rect.X < right {
				right = f.rect.X
			}
		}
	}
	return x, nonNegative(right - x)
}
