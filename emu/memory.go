// Package emu provides functional emulation of the simulated MIPS-like ISA.
package emu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"

	"github.com/sarchlab/pipesim/insts"
)

// ErrDataSegmentFull is returned when a variable does not fit below
// insts.MaxDataSize.
var ErrDataSegmentFull = errors.New("data segment full")

// Memory is the static data segment. Every access goes through a bounds
// check; out of range accesses report failure instead of faulting.
type Memory struct {
	data []byte
}

// NewMemory creates an empty data segment.
func NewMemory() *Memory {
	return &Memory{}
}

// AddVariable appends a variable to the segment and returns its offset.
// Padding is inserted so the variable starts at a multiple of its element
// size. Arrays are zero filled; scalars hold their initial value. The
// segment is left unchanged if the variable would grow it past
// insts.MaxDataSize.
func (m *Memory) AddVariable(def insts.VariableDef) (uint32, error) {
	size := def.Size.Bytes()

	start := uint64(len(m.data))
	if mod := start % uint64(size); mod != 0 {
		start += uint64(size) - mod
	}

	if end := start + def.Bytes(); end > insts.MaxDataSize {
		return 0, fmt.Errorf("%w: %d bytes requested at offset %d, limit is %d",
			ErrDataSegmentFull, def.Bytes(), start, insts.MaxDataSize)
	}

	m.data = append(m.data, make([]byte, int(start)-len(m.data))...)
	offset := uint32(start)

	if def.Kind == insts.VarArray {
		m.data = append(m.data, make([]byte, def.Bytes())...)
		return offset, nil
	}

	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], def.Value)
	m.data = append(m.data, buf[:size]...)

	return offset, nil
}

// Shrink frees unused capacity. It should be called after all variables
// have been added.
func (m *Memory) Shrink() {
	m.data = slices.Clip(m.data)
}

// Size returns the segment size in bytes.
func (m *Memory) Size() int {
	return len(m.data)
}

// Bytes returns a copy of the segment contents.
func (m *Memory) Bytes() []byte {
	return slices.Clone(m.data)
}

// Clone returns an independent copy of the segment.
func (m *Memory) Clone() *Memory {
	return &Memory{data: slices.Clip(slices.Clone(m.data))}
}

// Fits reports whether n bytes starting at addr lie inside the segment.
func (m *Memory) Fits(addr int64, n uint32) bool {
	return addr >= 0 && addr+int64(n) <= int64(len(m.data))
}

// Read reads a little-endian value of the given size. The value is not
// sign extended. It returns false if the access is out of range.
func (m *Memory) Read(addr int64, size insts.Size) (uint32, bool) {
	n := size.Bytes()
	if !m.Fits(addr, n) {
		return 0, false
	}

	b := m.data[addr : addr+int64(n)]
	switch size {
	case insts.SizeByte:
		return uint32(b[0]), true
	case insts.SizeHalf:
		return uint32(binary.LittleEndian.Uint16(b)), true
	default:
		return binary.LittleEndian.Uint32(b), true
	}
}

// Write stores the low bytes of value. It returns false, leaving memory
// untouched, if the access is out of range.
func (m *Memory) Write(addr int64, size insts.Size, value uint32) bool {
	n := size.Bytes()
	if !m.Fits(addr, n) {
		return false
	}

	b := m.data[addr : addr+int64(n)]
	switch size {
	case insts.SizeByte:
		b[0] = byte(value)
	case insts.SizeHalf:
		binary.LittleEndian.PutUint16(b, uint16(value))
	default:
		binary.LittleEndian.PutUint32(b, value)
	}

	return true
}
