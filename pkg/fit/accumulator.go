package fit

// Accumulator reconstructs values wider than their wire field by tracking
// rollovers. Each (message number, field number) key keeps its own last raw
// value and running total. An Accumulator belongs to one decode session.
type Accumulator struct {
	fields map[accumulatorKey]*accumulatedField
}

type accumulatorKey struct {
	mesgNum  uint16
	fieldNum uint8
}

type accumulatedField struct {
	last  uint64
	total uint64
}

// NewAccumulator creates an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{fields: make(map[accumulatorKey]*accumulatedField)}
}

// CreateAccumulatedField seeds a key so that its last value and total are
// both value. Values read directly from the wire seed the key this way.
func (a *Accumulator) CreateAccumulatedField(mesgNum uint16, fieldNum uint8, value uint64) {
	a.fields[accumulatorKey{mesgNum, fieldNum}] = &accumulatedField{last: value, total: value}
}

// Accumulate adds the distance from the key's last value to value, modulo
// 2^bits, to the running total and returns the new total. A key that was
// never seeded starts from zero. Callers must not pass invalid values.
func (a *Accumulator) Accumulate(mesgNum uint16, fieldNum uint8, value uint64, bits uint8) uint64 {
	key := accumulatorKey{mesgNum, fieldNum}
	af, ok := a.fields[key]
	if !ok {
		af = &accumulatedField{}
		a.fields[key] = af
	}

	mask := uint64(1)<<bits - 1
	if bits >= 64 {
		mask = ^uint64(0)
	}
	af.total += (value - af.last) & mask
	af.last = value
	return af.total
}

// Reset forgets every key.
func (a *Accumulator) Reset() {
	clear(a.fields)
}
