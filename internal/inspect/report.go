package inspect

// Report is the result of inspecting one fragmented file.
type Report struct {
	Path      string            `json:"completeName"`
	FileSize  int64             `json:"fileSize"`
	Brand     string            `json:"majorBrand"`
	Fragments []FragmentSummary `json:"fragments"`
}

// FragmentSummary describes one movie fragment.
type FragmentSummary struct {
	SequenceNumber uint32         `json:"sequenceNumber"`
	Offset         int64          `json:"offset"`
	Size           int64          `json:"size"`
	Tracks         []TrackSummary `json:"tracks"`
}

// TrackSummary describes one track fragment within a movie fragment.
type TrackSummary struct {
	TrackID             uint32 `json:"trackId"`
	BaseDecodeTime      uint64 `json:"baseDecodeTime"`
	RunCount            int    `json:"runCount"`
	SampleCount         int    `json:"sampleCount"`
	TotalSampleSize     uint64 `json:"totalSampleSize"`
	TotalSampleDuration uint64 `json:"totalSampleDuration"`
}

// SampleCount returns the number of samples across all fragments.
func (r Report) SampleCount() int {
	total := 0
	for _, frag := range r.Fragments {
		for _, track := range frag.Tracks {
			total += track.SampleCount
		}
	}
	return total
}
