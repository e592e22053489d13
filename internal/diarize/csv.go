package diarize

import (
	"encoding/csv"
	"io"
	"strconv"
)

var csvHeader = []string{"start_s", "end_s", "speaker"}

// WriteCSV writes the header row and one row per turn, times in seconds with
// three decimals and the speaker label untouched.
func WriteCSV(w io.Writer, turns []Turn) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range turns {
		row := []string{formatSeconds(t.Start), formatSeconds(t.End), t.Speaker}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
