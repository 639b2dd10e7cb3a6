package fmp4

import (
	"errors"
	"fmt"
	"io"

	"github.com/autobrr/go-fmp4info/internal/logger"
)

// A corrupt size field must not drive an arbitrarily large fragment read.
const maxMoofSize = int64(64 << 20)

// Applied when ReadOptions leaves MaxSamplesPerRun zero. Without it a run
// whose flags declare no per-sample columns could claim any sample count
// and drive an arbitrarily large sample table.
const defaultMaxSamplesPerRun = 1 << 20

// Sample is one assembled sample: its absolute byte range within the file
// and its decode timing, with tfhd defaults filled in for columns the run
// left out.
type Sample struct {
	Offset     uint64
	Size       uint32
	Duration   uint32
	Flags      uint32
	DecodeTime uint64
}

// TrackFragment is one assembled traf: the decoded header records, the raw
// run records and the flattened sample table built from them.
type TrackFragment struct {
	Header     *FragmentHeader
	DecodeTime *DecodeTimeRecord
	Runs       []*RunRecord
	Samples    []Sample
}

// Fragment is one assembled movie fragment.
type Fragment struct {
	Offset         int64
	Size           int64
	SequenceNumber uint32
	Tracks         []*TrackFragment
}

// ReadOptions control fragment reading.
type ReadOptions struct {
	// MaxSamplesPerRun caps the declared sample count of each run on top
	// of the payload-derived bound. Zero applies defaultMaxSamplesPerRun.
	MaxSamplesPerRun uint32

	// Log receives non-fatal diagnostics. May be nil.
	Log logger.Writer
}

// ReadFragments walks the top-level boxes of a fragmented file and
// assembles every movie fragment. Fragments whose run records are malformed
// or unsupported (ErrConflictingFlags, ErrFirstSampleFlagsUnsupported,
// ErrSampleCountLimit) are skipped with a warning; truncated or otherwise
// corrupt input aborts the read.
func ReadFragments(r io.ReaderAt, size int64, opts ReadOptions) ([]*Fragment, error) {
	if opts.MaxSamplesPerRun == 0 {
		opts.MaxSamplesPerRun = defaultMaxSamplesPerRun
	}

	var fragments []*Fragment

	var offset int64
	for offset+8 <= size {
		h, err := ReadBoxHeader(r, offset, size)
		if err != nil {
			return nil, err
		}
		if h.Size <= 0 || h.Size > size-offset {
			return nil, fmt.Errorf("box %q at %d: size %d overruns file: %w",
				h.Type, h.Offset, h.Size, io.ErrUnexpectedEOF)
		}

		if h.Type == "moof" {
			if h.PayloadSize() > maxMoofSize {
				return nil, fmt.Errorf("moof at %d: size %d exceeds limit", h.Offset, h.Size)
			}
			payload := make([]byte, h.PayloadSize())
			if _, err := r.ReadAt(payload, h.Offset+h.HeaderSize); err != nil {
				return nil, fmt.Errorf("reading moof at %d: %w", h.Offset, err)
			}

			frag, err := assembleFragment(h, payload, opts)
			if err != nil {
				if isRecoverableDecodeErr(err) {
					if opts.Log != nil {
						opts.Log.Log(logger.Warn, "skipping fragment at offset %d: %v", h.Offset, err)
					}
					offset += h.Size
					continue
				}
				return nil, err
			}
			fragments = append(fragments, frag)
		}

		offset += h.Size
	}

	return fragments, nil
}

func isRecoverableDecodeErr(err error) bool {
	return errors.Is(err, ErrConflictingFlags) ||
		errors.Is(err, ErrFirstSampleFlagsUnsupported) ||
		errors.Is(err, ErrSampleCountLimit)
}

func assembleFragment(h BoxHeader, payload []byte, opts ReadOptions) (*Fragment, error) {
	frag := &Fragment{Offset: h.Offset, Size: h.Size}

	err := WalkChildren(payload, h.Offset+h.HeaderSize, func(child BoxHeader, childPayload []byte) error {
		switch child.Type {
		case "mfhd":
			r := NewReader(childPayload)
			if _, err := ReadFullBoxHeader(r); err != nil {
				return err
			}
			seq, err := DecodeFragmentSequence(r)
			if err != nil {
				return err
			}
			frag.SequenceNumber = seq.SequenceNumber

		case "traf":
			track, err := assembleTrackFragment(child, childPayload, frag.Offset, opts)
			if err != nil {
				return err
			}
			frag.Tracks = append(frag.Tracks, track)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return frag, nil
}

func assembleTrackFragment(h BoxHeader, payload []byte, moofOffset int64, opts ReadOptions) (*TrackFragment, error) {
	track := &TrackFragment{}

	err := WalkChildren(payload, h.Offset+h.HeaderSize, func(child BoxHeader, childPayload []byte) error {
		r := NewReader(childPayload)

		switch child.Type {
		case "tfhd":
			fb, err := ReadFullBoxHeader(r)
			if err != nil {
				return err
			}
			track.Header, err = DecodeFragmentHeader(r, fb.Flags)
			return err

		case "tfdt":
			fb, err := ReadFullBoxHeader(r)
			if err != nil {
				return err
			}
			track.DecodeTime, err = DecodeDecodeTime(r, fb.Version)
			return err

		case "trun":
			fb, err := ReadFullBoxHeader(r)
			if err != nil {
				return err
			}
			run, err := DecodeRun(r, fb.Flags, int64(len(childPayload)), opts.MaxSamplesPerRun, opts.Log)
			if err != nil {
				return err
			}
			track.Runs = append(track.Runs, run)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if track.Header == nil {
		return nil, fmt.Errorf("traf at %d: missing tfhd", h.Offset)
	}

	track.Samples = assembleSamples(track, moofOffset)
	return track, nil
}

// assembleSamples flattens the track fragment's runs into absolute sample
// byte ranges and decode timestamps. The anchor is the tfhd base data
// offset when present and the start of the enclosing moof otherwise; each
// run's data offset is relative to that anchor, and runs without one
// continue where the previous run ended.
func assembleSamples(track *TrackFragment, moofOffset int64) []Sample {
	anchor := uint64(moofOffset)
	if track.Header.BaseDataOffsetPresent() {
		anchor = track.Header.BaseDataOffset
	}

	var decodeTime uint64
	if track.DecodeTime != nil {
		decodeTime = track.DecodeTime.BaseMediaDecodeTime
	}

	var samples []Sample
	next := anchor
	for _, run := range track.Runs {
		if run.DataOffsetPresent() {
			next = uint64(int64(anchor) + int64(run.DataOffset))
		}

		for i := uint32(0); i < run.SampleCount; i++ {
			s := Sample{
				Offset:     next,
				Size:       track.Header.DefaultSampleSize,
				Duration:   track.Header.DefaultSampleDuration,
				Flags:      track.Header.DefaultSampleFlags,
				DecodeTime: decodeTime,
			}
			if run.SampleSizesPresent() {
				s.Size = run.SampleSizes[i]
			}
			if run.SampleDurationsPresent() {
				s.Duration = run.SampleDurations[i]
			}
			if run.SampleFlagsPresent() {
				s.Flags = run.SampleFlags[i]
			}

			next += uint64(s.Size)
			decodeTime += uint64(s.Duration)
			samples = append(samples, s)
		}
	}

	return samples
}
