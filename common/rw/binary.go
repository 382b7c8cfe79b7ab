// Package rw reads and writes the fixed-width binary layout used by mesh dumps.
package rw

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrShortBuffer is reported when a read runs past the end of the data.
var ErrShortBuffer = errors.New("rw: unexpected end of data")

// ReaderWriter is a little-endian codec over an in-memory buffer. Reads keep
// the first error; later reads return zero values and Err reports it.
type ReaderWriter struct {
	order   binary.ByteOrder
	dataBuf [8]byte
	rw      bytes.Buffer
	err     error
}

func NewBinWriter() *ReaderWriter {
	return &ReaderWriter{order: binary.LittleEndian}
}

func NewBinReader(data []byte) *ReaderWriter {
	d := &ReaderWriter{order: binary.LittleEndian}
	d.rw.Write(data)
	return d
}

// ChangeOrder switches the byte order for subsequent reads and writes.
func (w *ReaderWriter) ChangeOrder(order binary.ByteOrder) {
	w.order = order
}

// Err returns the first read error.
func (w *ReaderWriter) Err() error {
	return w.err
}

func (w *ReaderWriter) read(n int) []byte {
	if w.err != nil {
		return nil
	}
	if w.rw.Len() < n {
		w.err = fmt.Errorf("%w: need %d bytes, have %d", ErrShortBuffer, n, w.rw.Len())
		return nil
	}
	b := w.dataBuf[:n]
	_, _ = w.rw.Read(b)
	return b
}

func (w *ReaderWriter) ReadUInt8() uint8 {
	b := w.read(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (w *ReaderWriter) ReadUInt8s(value []int) {
	for i := range value {
		value[i] = int(w.ReadUInt8())
	}
}

func (w *ReaderWriter) ReadUInt16() uint16 {
	b := w.read(2)
	if b == nil {
		return 0
	}
	return w.order.Uint16(b)
}

func (w *ReaderWriter) ReadUInt16s(value []int) {
	for i := range value {
		value[i] = int(w.ReadUInt16())
	}
}

func (w *ReaderWriter) ReadUInt32() uint32 {
	b := w.read(4)
	if b == nil {
		return 0
	}
	return w.order.Uint32(b)
}

func (w *ReaderWriter) ReadInt32() int32 {
	return int32(w.ReadUInt32())
}

func (w *ReaderWriter) ReadInt32s(value []int) {
	for i := range value {
		value[i] = int(w.ReadInt32())
	}
}

func (w *ReaderWriter) ReadFloat64() float64 {
	b := w.read(8)
	if b == nil {
		return 0
	}
	return math.Float64frombits(w.order.Uint64(b))
}

func (w *ReaderWriter) ReadFloat64s(value []float64) {
	for i := range value {
		value[i] = w.ReadFloat64()
	}
}

func (w *ReaderWriter) WriteUInt8(v uint8) {
	w.rw.WriteByte(v)
}

func (w *ReaderWriter) WriteUInt8s(value []int) {
	for _, v := range value {
		w.WriteUInt8(uint8(v))
	}
}

func (w *ReaderWriter) WriteUInt16(v uint16) {
	w.order.PutUint16(w.dataBuf[:2], v)
	w.rw.Write(w.dataBuf[:2])
}

func (w *ReaderWriter) WriteUInt16s(value []int) {
	for _, v := range value {
		w.WriteUInt16(uint16(v))
	}
}

func (w *ReaderWriter) WriteUInt32(v uint32) {
	w.order.PutUint32(w.dataBuf[:4], v)
	w.rw.Write(w.dataBuf[:4])
}

func (w *ReaderWriter) WriteInt32(v int32) {
	w.WriteUInt32(uint32(v))
}

func (w *ReaderWriter) WriteInt32s(value []int) {
	for _, v := range value {
		w.WriteInt32(int32(v))
	}
}

func (w *ReaderWriter) WriteFloat64(v float64) {
	w.order.PutUint64(w.dataBuf[:8], math.Float64bits(v))
	w.rw.Write(w.dataBuf[:8])
}

func (w *ReaderWriter) WriteFloat64s(value []float64) {
	for _, v := range value {
		w.WriteFloat64(v)
	}
}

func (w *ReaderWriter) WriteString(s string) {
	w.rw.WriteString(s)
}

func (w *ReaderWriter) PadZero(n int) {
	for i := 0; i < n; i++ {
		w.rw.WriteByte(0)
	}
}

func (w *ReaderWriter) Skip(size int) {
	if w.err != nil {
		return
	}
	if w.rw.Len() < size {
		w.err = fmt.Errorf("%w: skip %d bytes, have %d", ErrShortBuffer, size, w.rw.Len())
		return
	}
	w.rw.Next(size)
}

// GetWriteBytes returns the unread part of the buffer.
func (w *ReaderWriter) GetWriteBytes() []byte {
	return w.rw.Bytes()
}

// WriteTo copies the buffered bytes to dst.
func (w *ReaderWriter) WriteTo(dst io.Writer) (int64, error) {
	return w.rw.WriteTo(dst)
}

func (w *ReaderWriter) Size() int {
	return w.rw.Len()
}
