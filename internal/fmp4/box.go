package fmp4

import (
	"encoding/binary"
	"fmt"
	"io"
)

// BoxHeader is the size/type header of one box.
type BoxHeader struct {
	// Type is the four-character box type.
	Type string

	// Size is the total box size including the header. For a box that
	// extends to the end of the file (encoded size 0) it is the number of
	// bytes actually left.
	Size int64

	// HeaderSize is 8, or 16 when the 64-bit largesize form is used.
	HeaderSize int64

	// Offset is the absolute position of the box within the file.
	Offset int64
}

// PayloadSize returns the number of payload bytes following the header.
func (h BoxHeader) PayloadSize() int64 {
	return h.Size - h.HeaderSize
}

// ReadBoxHeader reads the box header at offset. fileSize bounds the
// open-ended size-0 form.
func ReadBoxHeader(r io.ReaderAt, offset, fileSize int64) (BoxHeader, error) {
	header := make([]byte, 8)
	if _, err := r.ReadAt(header, offset); err != nil {
		return BoxHeader{}, fmt.Errorf("reading box header at %d: %w", offset, err)
	}

	size32 := binary.BigEndian.Uint32(header[0:4])
	boxType := string(header[4:8])

	switch {
	case size32 == 0:
		return BoxHeader{Type: boxType, Size: fileSize - offset, HeaderSize: 8, Offset: offset}, nil

	case size32 == 1:
		larger := make([]byte, 8)
		if _, err := r.ReadAt(larger, offset+8); err != nil {
			return BoxHeader{}, fmt.Errorf("reading box largesize at %d: %w", offset, err)
		}
		size64 := binary.BigEndian.Uint64(larger)
		if size64 < 16 {
			return BoxHeader{}, fmt.Errorf("box %q at %d: invalid largesize %d", boxType, offset, size64)
		}
		return BoxHeader{Type: boxType, Size: int64(size64), HeaderSize: 16, Offset: offset}, nil

	case size32 < 8:
		return BoxHeader{}, fmt.Errorf("box %q at %d: invalid size %d", boxType, offset, size32)

	default:
		return BoxHeader{Type: boxType, Size: int64(size32), HeaderSize: 8, Offset: offset}, nil
	}
}

// WalkChildren calls fn for every child box laid out in buf, which holds
// the payload of a container box starting at absolute position base. The
// walk stops early when fn returns an error.
func WalkChildren(buf []byte, base int64, fn func(h BoxHeader, payload []byte) error) error {
	var offset int64
	for offset+8 <= int64(len(buf)) {
		h, err := readBoxHeaderFrom(buf, offset, base)
		if err != nil {
			return err
		}
		// A largesize with the top bit set turns into a negative Size;
		// comparing against the remaining length also avoids overflowing
		// offset+Size.
		if h.Size <= 0 || h.Size > int64(len(buf))-offset {
			return fmt.Errorf("box %q at %d: size %d overruns container: %w",
				h.Type, h.Offset, h.Size, io.ErrUnexpectedEOF)
		}
		end := offset + h.Size
		if err := fn(h, buf[offset+h.HeaderSize:end]); err != nil {
			return err
		}
		offset = end
	}
	return nil
}

func readBoxHeaderFrom(buf []byte, offset, base int64) (BoxHeader, error) {
	size32 := binary.BigEndian.Uint32(buf[offset : offset+4])
	boxType := string(buf[offset+4 : offset+8])

	switch {
	case size32 == 0:
		return BoxHeader{Type: boxType, Size: int64(len(buf)) - offset, HeaderSize: 8, Offset: base + offset}, nil

	case size32 == 1:
		if offset+16 > int64(len(buf)) {
			return BoxHeader{}, fmt.Errorf("box %q at %d: truncated largesize: %w",
				boxType, base+offset, io.ErrUnexpectedEOF)
		}
		size64 := binary.BigEndian.Uint64(buf[offset+8 : offset+16])
		if size64 < 16 {
			return BoxHeader{}, fmt.Errorf("box %q at %d: invalid largesize %d", boxType, base+offset, size64)
		}
		return BoxHeader{Type: boxType, Size: int64(size64), HeaderSize: 16, Offset: base + offset}, nil

	case size32 < 8:
		return BoxHeader{}, fmt.Errorf("box %q at %d: invalid size %d", boxType, base+offset, size32)

	default:
		return BoxHeader{Type: boxType, Size: int64(size32), HeaderSize: 8, Offset: base + offset}, nil
	}
}

// FullBoxHeader is the extended header shared by versioned boxes: one
// version byte followed by a 24-bit flags field.
type FullBoxHeader struct {
	Version uint8
	Flags   uint32
}

// ReadFullBoxHeader consumes the version and flags of a versioned box.
func ReadFullBoxHeader(r Reader) (FullBoxHeader, error) {
	version, err := r.Uint8("version")
	if err != nil {
		return FullBoxHeader{}, err
	}
	flags, err := r.Uint24("flags")
	if err != nil {
		return FullBoxHeader{}, err
	}
	return FullBoxHeader{Version: version, Flags: flags}, nil
}
