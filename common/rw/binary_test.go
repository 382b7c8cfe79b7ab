package rw

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	w := NewBinWriter()
	w.WriteInt32(-7)
	w.WriteUInt16(0xffff)
	w.WriteUInt8(63)
	w.WriteFloat64(0.3)
	w.WriteInt32s([]int{1, -2, 3})
	w.WriteUInt16s([]int{4, 5})
	w.WriteUInt8s([]int{6})
	w.WriteFloat64s([]float64{-1.5, 2.25})
	w.PadZero(3)
	assert.Equal(t, 4+2+1+8+12+4+1+16+3, w.Size())

	r := NewBinReader(w.GetWriteBytes())
	assert.Equal(t, int32(-7), r.ReadInt32())
	assert.Equal(t, uint16(0xffff), r.ReadUInt16())
	assert.Equal(t, uint8(63), r.ReadUInt8())
	assert.Equal(t, 0.3, r.ReadFloat64())

	ints := make([]int, 3)
	r.ReadInt32s(ints)
	assert.Equal(t, []int{1, -2, 3}, ints)
	shorts := make([]int, 2)
	r.ReadUInt16s(shorts)
	assert.Equal(t, []int{4, 5}, shorts)
	bs := make([]int, 1)
	r.ReadUInt8s(bs)
	assert.Equal(t, []int{6}, bs)
	fs := make([]float64, 2)
	r.ReadFloat64s(fs)
	assert.Equal(t, []float64{-1.5, 2.25}, fs)
	r.Skip(3)
	require.NoError(t, r.Err())
	assert.Equal(t, 0, r.Size())
}

func TestLittleEndianLayout(t *testing.T) {
	w := NewBinWriter()
	w.WriteInt32(0x01020304)
	assert.Equal(t, []byte{4, 3, 2, 1}, w.GetWriteBytes())

	w = NewBinWriter()
	w.ChangeOrder(binary.BigEndian)
	w.WriteInt32(0x01020304)
	assert.Equal(t, []byte{1, 2, 3, 4}, w.GetWriteBytes())
}

func TestShortReadIsSticky(t *testing.T) {
	r := NewBinReader([]byte{1, 2})
	assert.Equal(t, int32(0), r.ReadInt32())
	require.ErrorIs(t, r.Err(), ErrShortBuffer)

	// The two remaining bytes are not consumed after the failure.
	assert.Equal(t, uint16(0), r.ReadUInt16())
	assert.Equal(t, 2, r.Size())

	r = NewBinReader(nil)
	r.Skip(1)
	assert.ErrorIs(t, r.Err(), ErrShortBuffer)
}

func TestWriteTo(t *testing.T) {
	w := NewBinWriter()
	w.WriteString("rcpm")
	var buf bytes.Buffer
	n, err := w.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, "rcpm", buf.String())
}
