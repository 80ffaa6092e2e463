package diskspace

import (
	"fmt"
	"math"
)

// Unit is a binary size unit used when rendering a byte total.
type Unit int

const (
	B Unit = iota
	KB
	MB
	GB
	TB
)

// Scale is the factor between two consecutive units.
const Scale = 1024

var unitNames = [...]string{"B", "KB", "MB", "GB", "TB"}

func (u Unit) String() string {
	if u < B || u > TB {
		return "?"
	}
	return unitNames[u]
}

// Accumulator holds a running total of reclaimed bytes.
// Units are only applied when the total is rendered, so the counter never
// needs to re-normalize and cannot overflow into a fatal state.
type Accumulator struct {
	total uint64
}

// New returns an empty Accumulator
func New() *Accumulator {
	return &Accumulator{}
}

// Add adds n bytes to the total, saturating at math.MaxUint64.
func (a *Accumulator) Add(n uint64) {
	if a.total > math.MaxUint64-n {
		a.total = math.MaxUint64
		return
	}
	a.total += n
}

// Total returns the accumulated byte count
func (a *Accumulator) Total() uint64 {
	return a.total
}

// Scaled returns the total expressed in the largest unit whose magnitude is >= 1.
func (a *Accumulator) Scaled() (float64, Unit) {
	return Scaled(a.total)
}

// String renders the total, e.g. "150 B" or "1.95 KB".
func (a *Accumulator) String() string {
	return Format(a.total)
}

// Scaled converts bytes to a (magnitude, unit) pair. The magnitude is below
// Scale for every unit except TB, which absorbs anything larger.
func Scaled(bytes uint64) (float64, Unit) {
	unit := B
	magnitude := float64(bytes)
	for magnitude >= Scale && unit < TB {
		magnitude /= Scale
		unit++
	}
	return magnitude, unit
}

// Format renders a byte count. Bytes have no decimals, larger units two.
// A magnitude that rounds up to Scale is shown in the next unit.
func Format(bytes uint64) string {
	magnitude, unit := Scaled(bytes)
	if unit == B {
		return fmt.Sprintf("%d B", bytes)
	}
	if math.Round(magnitude*100)/100 >= Scale && unit < TB {
		magnitude /= Scale
		unit++
	}
	return fmt.Sprintf("%.2f %s", magnitude, unit)
}
