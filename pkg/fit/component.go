package fit

// Component describes a run of bits in a containing field that expands into
// another field of the same message.
type Component struct {
	// FieldNum is the destination field number.
	FieldNum uint8

	// Bits is the width of the run.
	Bits uint8

	// BitOffset is the position of the run within the containing field's
	// values, counted from the least significant bit of the first value.
	BitOffset int

	Scale      float64
	Offset     float64
	Accumulate bool
}

// value converts the raw bits of a component to a profile value.
func (c Component) value(raw uint64) float64 {
	scale := c.Scale
	if scale == 0 {
		scale = 1
	}
	return float64(raw)/scale - c.Offset
}
