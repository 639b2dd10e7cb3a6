package fmp4

// FragmentSequence is one decoded movie fragment header ('mfhd'): the
// 1-based sequence number of the fragment within the file.
type FragmentSequence struct {
	SequenceNumber uint32
}

func DecodeFragmentSequence(r Reader) (*FragmentSequence, error) {
	seq, err := r.Uint32("sequence_number")
	if err != nil {
		return nil, err
	}
	return &FragmentSequence{SequenceNumber: seq}, nil
}
