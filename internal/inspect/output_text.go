package inspect

import (
	"bytes"
	"fmt"
	"strings"
)

// Field is one rendered name/value line.
type Field struct {
	Name  string
	Value string
}

// RenderText renders reports in the classic aligned-columns layout.
func RenderText(reports []Report) string {
	var buf bytes.Buffer
	for i, report := range reports {
		if i > 0 {
			buf.WriteString("\n")
		}
		writeSection(&buf, "General", generalFields(report))
		for _, frag := range report.Fragments {
			for _, track := range frag.Tracks {
				buf.WriteString("\n")
				title := fmt.Sprintf("Fragment #%d", frag.SequenceNumber)
				if len(frag.Tracks) > 1 {
					title = fmt.Sprintf("%s, track %d", title, track.TrackID)
				}
				writeSection(&buf, title, trackFields(frag, track))
			}
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func generalFields(report Report) []Field {
	return []Field{
		{Name: "Complete name", Value: report.Path},
		{Name: "Format", Value: "Fragmented MPEG-4"},
		{Name: "Major brand", Value: report.Brand},
		{Name: "File size", Value: formatBytes(report.FileSize)},
		{Name: "Fragments", Value: formatCount(int64(len(report.Fragments)))},
		{Name: "Samples", Value: formatCount(int64(report.SampleCount()))},
	}
}

func trackFields(frag FragmentSummary, track TrackSummary) []Field {
	return []Field{
		{Name: "Sequence number", Value: formatCount(int64(frag.SequenceNumber))},
		{Name: "Offset", Value: formatCount(frag.Offset)},
		{Name: "Track ID", Value: formatCount(int64(track.TrackID))},
		{Name: "Base decode time", Value: formatUint(track.BaseDecodeTime)},
		{Name: "Runs", Value: formatCount(int64(track.RunCount))},
		{Name: "Samples", Value: formatCount(int64(track.SampleCount))},
		{Name: "Sample data size", Value: formatBytes(int64(track.TotalSampleSize))},
		{Name: "Sample duration", Value: formatUint(track.TotalSampleDuration) + " ticks"},
	}
}

func writeSection(buf *bytes.Buffer, title string, fields []Field) {
	buf.WriteString(title)
	buf.WriteString("\n")
	for _, field := range fields {
		buf.WriteString(padRight(field.Name, 36))
		buf.WriteString(": ")
		buf.WriteString(field.Value)
		buf.WriteString("\n")
	}
}

func padRight(value string, width int) string {
	if len(value) >= width {
		return value
	}
	return value + strings.Repeat(" ", width-len(value))
}
