// Package inspect turns a fragmented ISO-BMFF file into a report of its
// movie fragments and their sample tables.
package inspect

import (
	"fmt"
	"os"

	"github.com/autobrr/go-fmp4info/internal/fmp4"
	"github.com/autobrr/go-fmp4info/internal/logger"
)

// Options control file analysis.
type Options struct {
	// MaxSamplesPerRun caps the declared sample count of each run record.
	// Zero applies the reader's built-in default.
	MaxSamplesPerRun uint32

	// Log receives non-fatal diagnostics. May be nil.
	Log logger.Writer
}

// AnalyzeFile inspects one fragmented file and builds its report.
func AnalyzeFile(path string, opts Options) (Report, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return Report{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return Report{}, err
	}
	defer f.Close()

	brand, err := readBrand(f, stat.Size())
	if err != nil {
		return Report{}, err
	}

	fragments, err := fmp4.ReadFragments(f, stat.Size(), fmp4.ReadOptions{
		MaxSamplesPerRun: opts.MaxSamplesPerRun,
		Log:              opts.Log,
	})
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Path:     path,
		FileSize: stat.Size(),
		Brand:    brand,
	}
	for _, frag := range fragments {
		report.Fragments = append(report.Fragments, summarizeFragment(frag))
	}
	return report, nil
}

// readBrand checks that the file opens with a file or segment type box and
// returns its major brand.
func readBrand(r *os.File, size int64) (string, error) {
	h, err := fmp4.ReadBoxHeader(r, 0, size)
	if err != nil {
		return "", err
	}
	if h.Type != "ftyp" && h.Type != "styp" {
		return "", fmt.Errorf("not a fragmented ISO-BMFF file: leading box is %q", h.Type)
	}
	if h.PayloadSize() < 4 {
		return "", fmt.Errorf("%s box too small", h.Type)
	}
	brand := make([]byte, 4)
	if _, err := r.ReadAt(brand, h.HeaderSize); err != nil {
		return "", err
	}
	return string(brand), nil
}

func summarizeFragment(frag *fmp4.Fragment) FragmentSummary {
	summary := FragmentSummary{
		SequenceNumber: frag.SequenceNumber,
		Offset:         frag.Offset,
		Size:           frag.Size,
	}

	for _, track := range frag.Tracks {
		ts := TrackSummary{
			TrackID:     track.Header.TrackID,
			RunCount:    len(track.Runs),
			SampleCount: len(track.Samples),
		}
		if track.DecodeTime != nil {
			ts.BaseDecodeTime = track.DecodeTime.BaseMediaDecodeTime
		}
		// Sum over assembled samples rather than the raw run totals, so
		// that tfhd defaults count when a run omits a column.
		for _, sample := range track.Samples {
			ts.TotalSampleSize += uint64(sample.Size)
			ts.TotalSampleDuration += uint64(sample.Duration)
		}
		summary.Tracks = append(summary.Tracks, ts)
	}

	return summary
}
