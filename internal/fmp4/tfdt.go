package fmp4

// DecodeTimeRecord is one decoded track fragment decode time ('tfdt'): the
// decode timestamp, in track timescale units, of the fragment's first sample.
type DecodeTimeRecord struct {
	BaseMediaDecodeTime uint64
}

// DecodeDecodeTime decodes a tfdt record. Version 0 carries a 32-bit time,
// version 1 a 64-bit one.
func DecodeDecodeTime(r Reader, version uint8) (*DecodeTimeRecord, error) {
	if version == 0 {
		v, err := r.Uint32("base_media_decode_time")
		if err != nil {
			return nil, err
		}
		return &DecodeTimeRecord{BaseMediaDecodeTime: uint64(v)}, nil
	}
	v, err := r.Uint64("base_media_decode_time")
	if err != nil {
		return nil, err
	}
	return &DecodeTimeRecord{BaseMediaDecodeTime: v}, nil
}
