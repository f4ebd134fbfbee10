package tszip

import (
	"fmt"
	"sort"

	"github.com/tszip-db/tszip/trees"
)

// dictionary is a strictly increasing array of unique float64 values.
// Quantization replaces a value with the index of its exact match; by
// construction every quantized value is present, so the transform is
// exactly invertible.
type dictionary struct {
	values []float64
}

// newDictionary builds a deduplicated sorted dictionary from the given
// value slices.
func newDictionary(columns ...[]float64) *dictionary {
	n := 0
	for _, c := range columns {
		n += len(c)
	}
	all := make([]float64, 0, n)
	for _, c := range columns {
		all = append(all, c...)
	}
	sort.Float64s(all)
	unique := all[:0]
	for i, v := range all {
		if i == 0 || v != unique[len(unique)-1] {
			unique = append(unique, v)
		}
	}
	return &dictionary{values: unique}
}

// coordinateDictionary collects every genomic breakpoint: the sequence
// ends, all edge and migration interval bounds, and all site positions.
func coordinateDictionary(ts *trees.TableSet) *dictionary {
	return newDictionary(
		[]float64{0, ts.SequenceLength},
		ts.Edges.Left,
		ts.Edges.Right,
		ts.Migrations.Left,
		ts.Migrations.Right,
		ts.Sites.Position,
	)
}

// timeDictionary collects the unique node times. Used only by the
// variants-only transform, where node times are reduced to ranks.
func timeDictionary(ts *trees.TableSet) *dictionary {
	return newDictionary(ts.Nodes.Time)
}

// quantize maps each value to its dictionary index.
func (d *dictionary) quantize(values []float64) ([]int64, error) {
	out := make([]int64, len(values))
	for i, v := range values {
		j := sort.SearchFloat64s(d.values, v)
		if j >= len(d.values) || d.values[j] != v {
			return nil, fmt.Errorf("tszip: value %v not present in dictionary", v)
		}
		out[i] = int64(j)
	}
	return out, nil
}

// gather recovers original values from dictionary indices.
func (d *dictionary) gather(indices []int64) ([]float64, error) {
	out := make([]float64, len(indices))
	for i, j := range indices {
		if j < 0 || j >= int64(len(d.values)) {
			return nil, fmt.Errorf("tszip: dictionary index %d out of range [0, %d)", j, len(d.values))
		}
		out[i] = d.values[j]
	}
	return out, nil
}
