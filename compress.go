package tszip

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tszip-db/tszip/internal/carray"
	"github.com/tszip-db/tszip/trees"
)

// Compress encodes the table set into a new archive at destination. The
// archive is assembled in a temporary file in the destination's directory
// and published with an atomic rename, so on any failure an existing
// destination is left untouched and no partial archive is ever visible.
func Compress(ts *trees.TableSet, destination string, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.validate(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(destination), ".tszip-work-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	slog.Debug("writing to temporary file", "path", tmpPath)
	if err := compressInto(tmp, ts, opts); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, destination); err != nil {
		os.Remove(tmpPath)
		return err
	}
	slog.Info("wrote archive", "path", destination)
	return nil
}

// CompressTo encodes the table set and streams the archive to w. The
// archive is still produced in full in a temporary file first; either the
// complete byte stream is emitted or an error is returned before any byte
// is written to w.
func CompressTo(ts *trees.TableSet, w io.Writer, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.validate(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp("", ".tszip-work-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	defer tmp.Close()
	if err := compressInto(tmp, ts, opts); err != nil {
		return err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return err
	}
	_, err = io.Copy(w, tmp)
	return err
}

// compressInto runs the full encode pipeline: optional lossy transform,
// column assembly, per-column encoding and attribute write.
func compressInto(w io.Writer, ts *trees.TableSet, opts *Options) error {
	if opts.VariantsOnly {
		slog.Info("using lossy variants-only compression")
		simplified, err := ts.SimplifySiteTopology()
		if err != nil {
			return err
		}
		ts = simplified
	}

	provenance, err := newProvenance(opts.VariantsOnly)
	if err != nil {
		return err
	}

	cw := carray.NewWriter(w)
	err = cw.SetAttrs(rootAttrs{
		FormatName:     FormatName,
		FormatVersion:  []int{FormatVersionMajor, FormatVersionMinor},
		SequenceLength: ts.SequenceLength,
		Provenance:     provenance,
		TimeUnits:      ts.TimeUnits,
		Metadata:       ts.Metadata,
		MetadataSchema: ts.MetadataSchema,
	})
	if err != nil {
		cw.Close()
		return err
	}

	coords := coordinateDictionary(ts)
	columns, err := assembleColumns(ts, coords, opts.VariantsOnly)
	if err != nil {
		cw.Close()
		return err
	}
	for i := range columns {
		if err := columns[i].encode(cw, opts); err != nil {
			cw.Close()
			return err
		}
	}
	return cw.Close()
}
