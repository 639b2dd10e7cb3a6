package fmp4

import (
	"fmt"
	"io"
)

// Reader reads big-endian primitives from a positioned byte cursor. The
// field name travels with each read so short-read errors say which field
// was being decoded. Decoders are agnostic to whether the bytes come from
// an in-memory payload, a file or a network stream.
type Reader interface {
	Uint8(field string) (uint8, error)
	Uint24(field string) (uint32, error)
	Uint32(field string) (uint32, error)
	Uint64(field string) (uint64, error)
	Skip(n int, field string) error

	// Offset returns the number of bytes consumed so far.
	Offset() int
}

// BytesReader is a Reader over an in-memory record payload.
type BytesReader struct {
	buf []byte
	off int
}

func NewReader(buf []byte) *BytesReader {
	return &BytesReader{buf: buf}
}

// Remaining returns the number of unread payload bytes.
func (r *BytesReader) Remaining() int {
	return len(r.buf) - r.off
}

func (r *BytesReader) Offset() int {
	return r.off
}

func (r *BytesReader) take(n int, field string) ([]byte, error) {
	if r.Remaining() < n {
		return nil, fmt.Errorf("reading %s at offset %d: %w", field, r.off, io.ErrUnexpectedEOF)
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *BytesReader) Uint8(field string) (uint8, error) {
	b, err := r.take(1, field)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *BytesReader) Uint24(field string) (uint32, error) {
	b, err := r.take(3, field)
	if err != nil {
		return 0, err
	}
	return be24(b), nil
}

func (r *BytesReader) Uint32(field string) (uint32, error) {
	b, err := r.take(4, field)
	if err != nil {
		return 0, err
	}
	return be32(b), nil
}

func (r *BytesReader) Uint64(field string) (uint64, error) {
	b, err := r.take(8, field)
	if err != nil {
		return 0, err
	}
	return be64(b), nil
}

func (r *BytesReader) Skip(n int, field string) error {
	_, err := r.take(n, field)
	return err
}

// StreamReader is a Reader over an io.Reader. Any end-of-stream while a
// field is pending is reported as io.ErrUnexpectedEOF.
type StreamReader struct {
	r   io.Reader
	off int
}

func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: r}
}

func (r *StreamReader) Offset() int {
	return r.off
}

func (r *StreamReader) read(buf []byte, field string) error {
	if _, err := io.ReadFull(r.r, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("reading %s at offset %d: %w", field, r.off, err)
	}
	r.off += len(buf)
	return nil
}

func (r *StreamReader) Uint8(field string) (uint8, error) {
	var b [1]byte
	if err := r.read(b[:], field); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *StreamReader) Uint24(field string) (uint32, error) {
	var b [3]byte
	if err := r.read(b[:], field); err != nil {
		return 0, err
	}
	return be24(b[:]), nil
}

func (r *StreamReader) Uint32(field string) (uint32, error) {
	var b [4]byte
	if err := r.read(b[:], field); err != nil {
		return 0, err
	}
	return be32(b[:]), nil
}

func (r *StreamReader) Uint64(field string) (uint64, error) {
	var b [8]byte
	if err := r.read(b[:], field); err != nil {
		return 0, err
	}
	return be64(b[:]), nil
}

func (r *StreamReader) Skip(n int, field string) error {
	var b [8]byte
	for n > 0 {
		chunk := n
		if chunk > len(b) {
			chunk = len(b)
		}
		if err := r.read(b[:chunk], field); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

func be24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func be64(b []byte) uint64 {
	return uint64(be32(b[:4]))<<32 | uint64(be32(b[4:8]))
}

// signExtend reinterprets the low `bits` bits of v as a two's-complement
// signed integer. Shared by every signed field in the fragment records.
func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}
