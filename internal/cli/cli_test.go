package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tszip-db/tszip/trees"
)

func writeTables(t *testing.T, dir string) string {
	t.Helper()
	ts := trees.New(10)
	ts.Nodes.Add(trees.FlagSample, 0, trees.NullID, trees.NullID, nil)
	ts.Nodes.Add(0, 1, trees.NullID, trees.NullID, nil)
	ts.Edges.Add(0, 10, 1, 0, nil)
	path := filepath.Join(dir, "sim.trees")
	if err := ts.DumpFile(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFlags(t *testing.T) {
	opts, err := parse("tszip", []string{"-d", "-k", "-v", "-v", "-S", ".tz", "in.tz"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !opts.decompress || !opts.keep {
		t.Error("boolean flags not set")
	}
	if opts.verbosity != 2 {
		t.Errorf("verbosity = %d, want 2", opts.verbosity)
	}
	if opts.suffix != ".tz" {
		t.Errorf("suffix = %q, want .tz", opts.suffix)
	}
	if len(opts.inputs) != 1 || opts.inputs[0] != "in.tz" {
		t.Errorf("inputs = %v", opts.inputs)
	}
}

func TestDefaultSuffixFromConfig(t *testing.T) {
	opts, err := parse("tszip", []string{"x.trees"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if opts.suffix != ".tsz" {
		t.Errorf("suffix = %q, want .tsz", opts.suffix)
	}
}

func TestStdoutWithMultipleInputs(t *testing.T) {
	opts, err := parse("tszip", []string{"-c", "a.trees", "b.trees"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	err = run(opts, false)
	var ue *UsageError
	if !errors.As(err, &ue) {
		t.Fatalf("got %v, want UsageError", err)
	}
}

func TestNoInputs(t *testing.T) {
	opts, err := parse("tszip", nil)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	var ue *UsageError
	if !errors.As(run(opts, false), &ue) {
		t.Error("missing inputs should be a usage error")
	}
}

func TestDecompressRequiresSuffix(t *testing.T) {
	opts, err := parse("tszip", []string{"-d", "archive.zip"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	var ue *UsageError
	if !errors.As(run(opts, false), &ue) {
		t.Error("wrong suffix should be a usage error")
	}
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	dir := t.TempDir()
	input := writeTables(t, dir)

	if code := Main("tszip", []string{"-k", input}, false); code != 0 {
		t.Fatalf("compress exited %d", code)
	}
	archive := input + ".tsz"
	if _, err := os.Stat(archive); err != nil {
		t.Fatalf("archive not written: %v", err)
	}

	// Existing output without --force is refused.
	if code := Main("tszip", []string{"-k", input}, false); code == 0 {
		t.Error("overwrite without --force should fail")
	}
	if code := Main("tszip", []string{"-k", "-f", input}, false); code != 0 {
		t.Error("overwrite with --force should succeed")
	}

	if err := os.Remove(input); err != nil {
		t.Fatal(err)
	}
	if code := Main("tsunzip", []string{archive}, true); code != 0 {
		t.Fatal("decompress failed")
	}
	restored, err := trees.LoadFile(input)
	if err != nil {
		t.Fatalf("restored file unreadable: %v", err)
	}
	if restored.Nodes.NumRows() != 2 {
		t.Errorf("restored %d node rows, want 2", restored.Nodes.NumRows())
	}
	// Without -k the archive is consumed.
	if _, err := os.Stat(archive); !errors.Is(err, os.ErrNotExist) {
		t.Error("archive should have been removed after decompress")
	}
}

func TestListCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeTables(t, dir)
	if code := Main("tszip", []string{input}, false); code != 0 {
		t.Fatal("compress failed")
	}
	if code := Main("tszip", []string{"-l", input + ".tsz"}, false); code != 0 {
		t.Error("list failed")
	}
}
