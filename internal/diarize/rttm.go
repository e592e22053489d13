package diarize

import (
	"bufio"
	"fmt"
	"io"
)

// Segments is a Result backed by a plain slice of turns. Backends that do not
// get RTTM text from the pipeline use it to render the standard layout.
type Segments struct {
	URI  string
	List []Turn
}

func (s *Segments) Turns() []Turn { return s.List }

// WriteRTTM writes one SPEAKER line per turn, the way pyannote's
// Annotation.write_rttm lays them out.
func (s *Segments) WriteRTTM(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, t := range s.List {
		if _, err := fmt.Fprintf(bw, "SPEAKER %s 1 %.3f %.3f <NA> <NA> %s <NA> <NA>\n",
			s.URI, t.Start, t.End-t.Start, t.Speaker); err != nil {
			return err
		}
	}
	return bw.Flush()
}
