package inspect

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func u32be(v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return b[:]
}

func u64be(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

func fullBox(version byte, flags uint32, payload ...[]byte) []byte {
	out := []byte{version, byte(flags >> 16), byte(flags >> 8), byte(flags)}
	for _, p := range payload {
		out = append(out, p...)
	}
	return out
}

func box(typ string, payload ...[]byte) []byte {
	var body []byte
	for _, p := range payload {
		body = append(body, p...)
	}
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(8+len(body)))
	buf.WriteString(typ)
	buf.Write(body)
	return buf.Bytes()
}

// writeFixture writes a one-fragment file: styp, moof with a single traf of
// two samples, mdat.
func writeFixture(t *testing.T) string {
	t.Helper()

	trun := box("trun", fullBox(0, 0x301,
		u32be(2),
		u32be(112),
		u32be(100), u32be(1000),
		u32be(100), u32be(2000),
	))
	moof := box("moof",
		box("mfhd", fullBox(0, 0, u32be(1))),
		box("traf",
			box("tfhd", fullBox(0, 0x020000, u32be(1))),
			box("tfdt", fullBox(1, 0, u64be(0))),
			trun,
		),
	)

	var file bytes.Buffer
	file.Write(box("styp", []byte("cmfs"), u32be(0)))
	file.Write(moof)
	file.Write(box("mdat", make([]byte, 3000)))

	path := filepath.Join(t.TempDir(), "segment.mp4")
	require.NoError(t, os.WriteFile(path, file.Bytes(), 0o644))
	return path
}

func TestAnalyzeFile(t *testing.T) {
	path := writeFixture(t)

	report, err := AnalyzeFile(path, Options{})
	require.NoError(t, err)

	require.Equal(t, path, report.Path)
	require.Equal(t, "cmfs", report.Brand)
	require.Len(t, report.Fragments, 1)
	require.Equal(t, 2, report.SampleCount())

	frag := report.Fragments[0]
	require.Equal(t, uint32(1), frag.SequenceNumber)
	require.Len(t, frag.Tracks, 1)

	track := frag.Tracks[0]
	require.Equal(t, uint32(1), track.TrackID)
	require.Equal(t, 1, track.RunCount)
	require.Equal(t, 2, track.SampleCount)
	require.Equal(t, uint64(3000), track.TotalSampleSize)
	require.Equal(t, uint64(200), track.TotalSampleDuration)
}

func TestAnalyzeFileNotFragmented(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.bin")
	var file bytes.Buffer
	file.Write(box("free", make([]byte, 16)))
	require.NoError(t, os.WriteFile(path, file.Bytes(), 0o644))

	_, err := AnalyzeFile(path, Options{})
	require.ErrorContains(t, err, "not a fragmented ISO-BMFF file")
}

func TestRenderText(t *testing.T) {
	report := Report{
		Path:     "segment.mp4",
		FileSize: 2048,
		Brand:    "cmfs",
		Fragments: []FragmentSummary{{
			SequenceNumber: 1,
			Offset:         16,
			Size:           104,
			Tracks: []TrackSummary{{
				TrackID:             1,
				BaseDecodeTime:      9000,
				RunCount:            1,
				SampleCount:         2,
				TotalSampleSize:     3000,
				TotalSampleDuration: 200,
			}},
		}},
	}

	out := RenderText([]Report{report})
	require.Contains(t, out, "General")
	require.Contains(t, out, padRight("Complete name", 36)+": segment.mp4")
	require.Contains(t, out, padRight("Major brand", 36)+": cmfs")
	require.Contains(t, out, padRight("File size", 36)+": 2.00 KiB")
	require.Contains(t, out, "Fragment #1")
	require.Contains(t, out, padRight("Base decode time", 36)+": 9 000")
	require.Contains(t, out, padRight("Sample data size", 36)+": 2.93 KiB")
}

func TestRenderJSON(t *testing.T) {
	report := Report{
		Path:  "segment.mp4",
		Brand: "cmfs",
		Fragments: []FragmentSummary{{
			SequenceNumber: 1,
			Tracks:         []TrackSummary{{TrackID: 1, SampleCount: 2}},
		}},
	}

	out, err := RenderJSON([]Report{report})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Equal(t, "cmfs", decoded["majorBrand"])

	// Two reports render as an array.
	out, err = RenderJSON([]Report{report, report})
	require.NoError(t, err)
	var decodedList []interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decodedList))
	require.Len(t, decodedList, 2)
}

func TestFormatBytes(t *testing.T) {
	require.Equal(t, "512 B", formatBytes(512))
	require.Equal(t, "2.00 KiB", formatBytes(2048))
	require.Equal(t, "1.20 MiB", formatBytes(1258291))
}

func TestFormatCount(t *testing.T) {
	require.Equal(t, "0", formatCount(0))
	require.Equal(t, "999", formatCount(999))
	require.Equal(t, "9 000", formatCount(9000))
	require.Equal(t, "1 234 567", formatCount(1234567))
	require.Equal(t, "-1 234", formatCount(-1234))
}

func TestFormatUint(t *testing.T) {
	require.Equal(t, "0", formatUint(0))
	require.Equal(t, "9 000", formatUint(9000))
	// Values above 1<<63 must not render as negative.
	require.Equal(t, "18 446 744 073 709 551 615", formatUint(math.MaxUint64))
}
