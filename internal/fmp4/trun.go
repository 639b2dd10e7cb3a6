package fmp4

import (
	"fmt"

	"github.com/autobrr/go-fmp4info/internal/logger"
)

// Track run ('trun') flag bits, ISO/IEC 14496-12 8.8.8.
const (
	TrunDataOffsetPresent       uint32 = 0x000001
	TrunFirstSampleFlagsPresent uint32 = 0x000004
	TrunSampleDurationPresent   uint32 = 0x000100
	TrunSampleSizePresent       uint32 = 0x000200
	TrunSampleFlagsPresent      uint32 = 0x000400
	TrunSampleCTSOffsetPresent  uint32 = 0x000800
)

// RunRecord is one decoded track fragment run: per-sample sizes, durations
// and flags for a contiguous run of samples within a movie fragment. A
// column slice has exactly SampleCount entries when its presence bit is set
// in Flags and is nil otherwise. The record is immutable after decoding.
type RunRecord struct {
	Flags       uint32
	SampleCount uint32

	// DataOffset is the signed byte offset of the run's sample data
	// relative to the fragment's base offset. Meaningful only when
	// DataOffsetPresent reports true.
	DataOffset int32

	// FirstSampleFlags is the flag override for sample 0. Runs carrying it
	// are currently rejected with ErrFirstSampleFlagsUnsupported, so the
	// field is never populated on a successfully decoded record.
	FirstSampleFlags uint32

	SampleDurations []uint32
	SampleSizes     []uint32
	SampleFlags     []uint32

	// TotalSampleSize and TotalSampleDuration are the sums of the
	// respective columns, zero when the column is absent.
	TotalSampleSize     uint64
	TotalSampleDuration uint64
}

// DataOffsetPresent reports whether the run carries an explicit data offset.
func (rr *RunRecord) DataOffsetPresent() bool {
	return rr.Flags&TrunDataOffsetPresent != 0
}

// FirstSampleFlagsPresent reports whether the run carries a first-sample
// flag override.
func (rr *RunRecord) FirstSampleFlagsPresent() bool {
	return rr.Flags&TrunFirstSampleFlagsPresent != 0
}

// SampleDurationsPresent reports whether per-sample durations are provided.
func (rr *RunRecord) SampleDurationsPresent() bool {
	return rr.Flags&TrunSampleDurationPresent != 0
}

// SampleSizesPresent reports whether per-sample sizes are provided.
func (rr *RunRecord) SampleSizesPresent() bool {
	return rr.Flags&TrunSampleSizePresent != 0
}

// SampleFlagsPresent reports whether per-sample flags are provided.
func (rr *RunRecord) SampleFlagsPresent() bool {
	return rr.Flags&TrunSampleFlagsPresent != 0
}

// runLayout is the set of presence bits of one run, derived once from the
// raw flags so the per-sample loop never re-tests the mask.
type runLayout struct {
	dataOffset       bool
	firstSampleFlags bool
	duration         bool
	size             bool
	flags            bool
	ctsOffset        bool
}

func layoutOf(flags uint32) runLayout {
	return runLayout{
		dataOffset:       flags&TrunDataOffsetPresent != 0,
		firstSampleFlags: flags&TrunFirstSampleFlagsPresent != 0,
		duration:         flags&TrunSampleDurationPresent != 0,
		size:             flags&TrunSampleSizePresent != 0,
		flags:            flags&TrunSampleFlagsPresent != 0,
		ctsOffset:        flags&TrunSampleCTSOffsetPresent != 0,
	}
}

// bytesPerSample returns the encoded width of one per-sample row.
func (l runLayout) bytesPerSample() int {
	n := 0
	if l.duration {
		n += 4
	}
	if l.size {
		n += 4
	}
	if l.flags {
		n += 4
	}
	if l.ctsOffset {
		n += 4
	}
	return n
}

// DecodeRun decodes a track fragment run. The reader must be positioned
// immediately after the record's version and flags, which the box walker
// reads as the FullBoxHeader; flags is the 24-bit value from that header.
//
// payloadSize is the record's declared payload length in bytes, counted
// from where the reader started; non-positive means unknown (a pure
// stream). The declared sample count is validated against the payload
// bytes left and against maxSamples (zero disables that cap) before any
// column is allocated. Composition time offsets, when present, are
// consumed and dropped with a single warning on log. Decoding either
// succeeds completely or returns an error; no partial record is ever
// produced.
func DecodeRun(r Reader, flags uint32, payloadSize int64, maxSamples uint32, log logger.Writer) (*RunRecord, error) {
	layout := layoutOf(flags)

	sampleCount, err := r.Uint32("sample_count")
	if err != nil {
		return nil, err
	}

	rr := &RunRecord{
		Flags:       flags,
		SampleCount: sampleCount,
	}

	if layout.dataOffset {
		v, err := r.Uint32("data_offset")
		if err != nil {
			return nil, err
		}
		rr.DataOffset = signExtend(v, 32)
	}

	if layout.firstSampleFlags {
		// Mutual exclusion is decided by the flag bits alone, before any
		// attempt to read the override value.
		if layout.flags {
			return nil, ErrConflictingFlags
		}
		if _, err := r.Uint32("first_sample_flags"); err != nil {
			return nil, err
		}
		return nil, ErrFirstSampleFlagsUnsupported
	}

	// The count comes straight from the stream. Reject it against the
	// bytes actually left in the record before allocating any column.
	perSample := layout.bytesPerSample()
	if perSample > 0 && payloadSize > 0 {
		if avail := (payloadSize - int64(r.Offset())) / int64(perSample); int64(sampleCount) > avail {
			return nil, fmt.Errorf("%w: %d samples declared, payload holds at most %d",
				ErrSampleCountLimit, sampleCount, avail)
		}
	}
	if maxSamples > 0 && sampleCount > maxSamples {
		return nil, fmt.Errorf("%w: %d samples declared, configured maximum is %d",
			ErrSampleCountLimit, sampleCount, maxSamples)
	}

	if layout.duration {
		rr.SampleDurations = make([]uint32, 0, sampleCount)
	}
	if layout.size {
		rr.SampleSizes = make([]uint32, 0, sampleCount)
	}
	if layout.flags {
		rr.SampleFlags = make([]uint32, 0, sampleCount)
	}

	// A layout without row columns encodes zero bytes per sample.
	if perSample == 0 {
		sampleCount = 0
	}

	for i := uint32(0); i < sampleCount; i++ {
		if layout.duration {
			duration, err := r.Uint32("sample_duration")
			if err != nil {
				return nil, err
			}
			rr.SampleDurations = append(rr.SampleDurations, duration)
			rr.TotalSampleDuration += uint64(duration)
		}

		if layout.size {
			size, err := r.Uint32("sample_size")
			if err != nil {
				return nil, err
			}
			rr.SampleSizes = append(rr.SampleSizes, size)
			rr.TotalSampleSize += uint64(size)
		}

		if layout.flags {
			sf, err := r.Uint32("sample_flags")
			if err != nil {
				return nil, err
			}
			rr.SampleFlags = append(rr.SampleFlags, sf)
		}

		// Unsigned in version 0, signed in version 1. The distinction is
		// irrelevant here: the value is not retained either way.
		if layout.ctsOffset {
			if err := r.Skip(4, "sample_composition_time_offset"); err != nil {
				return nil, err
			}
		}
	}

	if layout.ctsOffset && log != nil {
		log.Log(logger.Warn, "ignoring composition time offsets of %d samples", sampleCount)
	}

	return rr, nil
}
