// Package codec reads and writes the primitive values of the wire protocol.
//
// Every value, whatever its logical type, travels as UTF-8 text followed by a
// single zero byte. An empty run means the value is absent.
package codec

import (
	"math"
)

const (
	// Terminator ends every value on the wire.
	Terminator byte = 0

	// IntMax marks an unset integer field.
	IntMax = math.MaxInt32

	// DoubleMax marks an unset floating point field.
	DoubleMax = math.MaxFloat64
)
