package tszip

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

// ArraySummary describes one stored column of an archive.
type ArraySummary struct {
	Name        string
	Kind        string
	Len         int
	LogicalSize int64
	StoredSize  int64
}

// Ratio is the stored to logical size ratio; smaller is better.
func (a ArraySummary) Ratio() float64 {
	if a.LogicalSize == 0 {
		return 0
	}
	return float64(a.StoredSize) / float64(a.LogicalSize)
}

// Summary describes the layout and compression of an archive.
type Summary struct {
	Path          string
	FileSize      int64
	FormatVersion []int
	Provenance    json.RawMessage
	Arrays        []ArraySummary
}

// Summarize inspects the archive at path without decoding its columns.
func Summarize(path string) (*Summary, error) {
	r, attrs, err := openArchive(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	s := &Summary{
		Path:          path,
		FileSize:      st.Size(),
		FormatVersion: attrs.FormatVersion,
		Provenance:    attrs.Provenance,
	}
	for _, name := range r.Arrays() {
		info, err := r.Info(name)
		if err != nil {
			return nil, newFormatError(FormatErrorColumn, fmt.Sprintf("inspecting column %q", name), path, err)
		}
		kind := info.Kind
		if kind == "" {
			kind = legacyColumnKind(name).String()
		}
		s.Arrays = append(s.Arrays, ArraySummary{
			Name:        name,
			Kind:        kind,
			Len:         info.Len,
			LogicalSize: info.NBytes,
			StoredSize:  info.StoredBytes,
		})
	}
	return s, nil
}

// Render writes a human readable report. At verbosity zero only the
// per-array table is printed; higher verbosity adds the format version
// and the stored provenance record.
func (s *Summary) Render(w io.Writer, verbosity int) error {
	fmt.Fprintf(w, "%s: %s\n", s.Path, humanize.IBytes(uint64(s.FileSize)))
	if verbosity > 0 {
		fmt.Fprintf(w, "format_version: %v\n", s.FormatVersion)
		if len(s.Provenance) > 0 {
			var pretty []byte
			var buf map[string]any
			if err := json.Unmarshal(s.Provenance, &buf); err == nil {
				pretty, _ = json.MarshalIndent(buf, "  ", "  ")
			}
			if pretty == nil {
				pretty = s.Provenance
			}
			fmt.Fprintf(w, "provenance:\n  %s\n", pretty)
		}
	}

	var logical, stored int64
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "name\tkind\trows\tsize\tstored\tratio")
	for _, a := range s.Arrays {
		logical += a.LogicalSize
		stored += a.StoredSize
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%.2f\n",
			a.Name, a.Kind, a.Len,
			humanize.IBytes(uint64(a.LogicalSize)),
			humanize.IBytes(uint64(a.StoredSize)),
			a.Ratio())
	}
	ratio := 0.0
	if logical > 0 {
		ratio = float64(stored) / float64(logical)
	}
	fmt.Fprintf(tw, "total\t\t\t%s\t%s\t%.2f\n",
		humanize.IBytes(uint64(logical)), humanize.IBytes(uint64(stored)), ratio)
	return tw.Flush()
}
