package fmp4

// Track fragment header ('tfhd') flag bits, ISO/IEC 14496-12 8.8.7.
const (
	TfhdBaseDataOffsetPresent         uint32 = 0x000001
	TfhdSampleDescriptionIndexPresent uint32 = 0x000002
	TfhdDefaultSampleDurationPresent  uint32 = 0x000008
	TfhdDefaultSampleSizePresent      uint32 = 0x000010
	TfhdDefaultSampleFlagsPresent     uint32 = 0x000020
	TfhdDurationIsEmpty               uint32 = 0x010000
	TfhdDefaultBaseIsMoof             uint32 = 0x020000
)

// FragmentHeader is one decoded track fragment header: the track the
// fragment belongs to plus per-fragment defaults for the sample columns a
// run leaves out.
type FragmentHeader struct {
	Flags   uint32
	TrackID uint32

	BaseDataOffset         uint64
	SampleDescriptionIndex uint32
	DefaultSampleDuration  uint32
	DefaultSampleSize      uint32
	DefaultSampleFlags     uint32
}

// BaseDataOffsetPresent reports whether an explicit base data offset is set.
func (fh *FragmentHeader) BaseDataOffsetPresent() bool {
	return fh.Flags&TfhdBaseDataOffsetPresent != 0
}

// DefaultBaseIsMoof reports whether sample offsets anchor at the start of
// the enclosing movie fragment.
func (fh *FragmentHeader) DefaultBaseIsMoof() bool {
	return fh.Flags&TfhdDefaultBaseIsMoof != 0
}

// DecodeFragmentHeader decodes a track fragment header. The reader must be
// positioned after the version and flags; flags is the value read there.
func DecodeFragmentHeader(r Reader, flags uint32) (*FragmentHeader, error) {
	fh := &FragmentHeader{Flags: flags}

	var err error
	if fh.TrackID, err = r.Uint32("track_id"); err != nil {
		return nil, err
	}

	if flags&TfhdBaseDataOffsetPresent != 0 {
		if fh.BaseDataOffset, err = r.Uint64("base_data_offset"); err != nil {
			return nil, err
		}
	}
	if flags&TfhdSampleDescriptionIndexPresent != 0 {
		if fh.SampleDescriptionIndex, err = r.Uint32("sample_description_index"); err != nil {
			return nil, err
		}
	}
	if flags&TfhdDefaultSampleDurationPresent != 0 {
		if fh.DefaultSampleDuration, err = r.Uint32("default_sample_duration"); err != nil {
			return nil, err
		}
	}
	if flags&TfhdDefaultSampleSizePresent != 0 {
		if fh.DefaultSampleSize, err = r.Uint32("default_sample_size"); err != nil {
			return nil, err
		}
	}
	if flags&TfhdDefaultSampleFlagsPresent != 0 {
		if fh.DefaultSampleFlags, err = r.Uint32("default_sample_flags"); err != nil {
			return nil, err
		}
	}

	return fh, nil
}
