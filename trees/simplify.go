package trees

import (
	"encoding/json"
	"sort"
	"time"
)

// SimplifySiteTopology returns a copy of the table set reduced to site
// topology. Edge intervals are snapped to the breakpoint set formed by the
// site positions and the sequence ends, edges spanning no site are dropped,
// and nodes, individuals and populations left unreferenced are removed with
// ids remapped. Migrations are discarded. The marginal tree at every site
// position is preserved exactly, so variants are unaffected. One provenance
// record describing the operation is appended.
func (ts *TableSet) SimplifySiteTopology() (*TableSet, error) {
	out := New(ts.SequenceLength)
	out.TimeUnits = ts.TimeUnits
	out.Metadata = append([]byte(nil), ts.Metadata...)
	out.MetadataSchema = ts.MetadataSchema
	out.Individuals.MetadataSchema = ts.Individuals.MetadataSchema
	out.Nodes.MetadataSchema = ts.Nodes.MetadataSchema
	out.Edges.MetadataSchema = ts.Edges.MetadataSchema
	out.Migrations.MetadataSchema = ts.Migrations.MetadataSchema
	out.Sites.MetadataSchema = ts.Sites.MetadataSchema
	out.Mutations.MetadataSchema = ts.Mutations.MetadataSchema
	out.Populations.MetadataSchema = ts.Populations.MetadataSchema

	positions := ts.Sites.Position
	breakpoints := sitesBreakpoints(positions, ts.SequenceLength)

	type snappedEdge struct {
		left, right   float64
		parent, child int32
		metadata      []byte
	}
	var kept []snappedEdge
	for i := range ts.Edges.Left {
		left, right := ts.Edges.Left[i], ts.Edges.Right[i]
		// Sites covered by [left, right).
		k0 := sort.SearchFloat64s(positions, left)
		k1 := sort.SearchFloat64s(positions, right) - 1
		if k1 < k0 {
			continue
		}
		// Snap to the first covered site and the breakpoint after the last.
		newLeft := positions[k0]
		newRight := nextBreakpoint(breakpoints, positions[k1])
		kept = append(kept, snappedEdge{
			left:     newLeft,
			right:    newRight,
			parent:   ts.Edges.Parent[i],
			child:    ts.Edges.Child[i],
			metadata: Row(ts.Edges.Metadata, ts.Edges.MetadataOffsets, i),
		})
	}

	// Squash runs of abutting edges for the same parent/child pair.
	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.parent != b.parent {
			return a.parent < b.parent
		}
		if a.child != b.child {
			return a.child < b.child
		}
		return a.left < b.left
	})
	squashed := kept[:0]
	for _, e := range kept {
		if n := len(squashed); n > 0 {
			prev := &squashed[n-1]
			if prev.parent == e.parent && prev.child == e.child &&
				prev.right == e.left && len(prev.metadata) == 0 && len(e.metadata) == 0 {
				prev.right = e.right
				continue
			}
		}
		squashed = append(squashed, e)
	}

	// Nodes stay if they are samples, appear on a kept edge, or carry a
	// mutation.
	used := make([]bool, ts.Nodes.NumRows())
	for i := range ts.Nodes.Flags {
		if ts.Nodes.Flags[i]&FlagSample != 0 {
			used[i] = true
		}
	}
	for _, e := range squashed {
		used[e.parent] = true
		used[e.child] = true
	}
	for _, n := range ts.Mutations.Node {
		if n != NullID {
			used[n] = true
		}
	}

	nodeMap := make([]int32, ts.Nodes.NumRows())
	indivUsed := make([]bool, ts.Individuals.NumRows())
	popUsed := make([]bool, ts.Populations.NumRows())
	for i := range nodeMap {
		nodeMap[i] = NullID
		if !used[i] {
			continue
		}
		if ind := ts.Nodes.Individual[i]; ind != NullID {
			indivUsed[ind] = true
		}
		if pop := ts.Nodes.Population[i]; pop != NullID {
			popUsed[pop] = true
		}
	}

	indivMap := make([]int32, ts.Individuals.NumRows())
	for i := range indivMap {
		indivMap[i] = NullID
		if indivUsed[i] {
			indivMap[i] = out.Individuals.Add(
				ts.Individuals.Flags[i],
				FloatRow(ts.Individuals.Location, ts.Individuals.LocationOffsets, i),
				nil, // parents remapped below
				Row(ts.Individuals.Metadata, ts.Individuals.MetadataOffsets, i),
			)
		}
	}
	// Rebuild the parents column with remapped ids; references to dropped
	// individuals become null.
	out.Individuals.Parents = out.Individuals.Parents[:0]
	out.Individuals.ParentsOffsets = []uint64{0}
	for i := range indivMap {
		if indivMap[i] == NullID {
			continue
		}
		parents := IntRow(ts.Individuals.Parents, ts.Individuals.ParentsOffsets, i)
		mapped := make([]int32, len(parents))
		for j, p := range parents {
			mapped[j] = NullID
			if p != NullID {
				mapped[j] = indivMap[p]
			}
		}
		out.Individuals.Parents = append(out.Individuals.Parents, mapped...)
		out.Individuals.ParentsOffsets = appendOffset(out.Individuals.ParentsOffsets, len(mapped))
	}

	popMap := make([]int32, ts.Populations.NumRows())
	for i := range popMap {
		popMap[i] = NullID
		if popUsed[i] {
			popMap[i] = out.Populations.Add(Row(ts.Populations.Metadata, ts.Populations.MetadataOffsets, i))
		}
	}

	for i := range ts.Nodes.Flags {
		if !used[i] {
			continue
		}
		pop, ind := NullID, NullID
		if p := ts.Nodes.Population[i]; p != NullID {
			pop = popMap[p]
		}
		if d := ts.Nodes.Individual[i]; d != NullID {
			ind = indivMap[d]
		}
		nodeMap[i] = out.Nodes.Add(
			ts.Nodes.Flags[i],
			ts.Nodes.Time[i],
			pop,
			ind,
			Row(ts.Nodes.Metadata, ts.Nodes.MetadataOffsets, i),
		)
	}

	// Canonical edge order: parent time, parent, child, left.
	sort.SliceStable(squashed, func(i, j int) bool {
		a, b := squashed[i], squashed[j]
		ta, tb := ts.Nodes.Time[a.parent], ts.Nodes.Time[b.parent]
		if ta != tb {
			return ta < tb
		}
		if a.parent != b.parent {
			return a.parent < b.parent
		}
		if a.child != b.child {
			return a.child < b.child
		}
		return a.left < b.left
	})
	for _, e := range squashed {
		out.Edges.Add(e.left, e.right, nodeMap[e.parent], nodeMap[e.child], e.metadata)
	}

	for i := range ts.Sites.Position {
		out.Sites.Add(
			ts.Sites.Position[i],
			Row(ts.Sites.AncestralState, ts.Sites.AncestralStateOffsets, i),
			Row(ts.Sites.Metadata, ts.Sites.MetadataOffsets, i),
		)
	}
	for i := range ts.Mutations.Site {
		node := ts.Mutations.Node[i]
		if node != NullID {
			node = nodeMap[node]
		}
		out.Mutations.Add(
			ts.Mutations.Site[i],
			node,
			ts.Mutations.Parent[i],
			ts.Mutations.Time[i],
			Row(ts.Mutations.DerivedState, ts.Mutations.DerivedStateOffsets, i),
			Row(ts.Mutations.Metadata, ts.Mutations.MetadataOffsets, i),
		)
	}

	for i := 0; i < ts.Provenances.NumRows(); i++ {
		out.Provenances.Add(
			Row(ts.Provenances.Timestamp, ts.Provenances.TimestampOffsets, i),
			Row(ts.Provenances.Record, ts.Provenances.RecordOffsets, i),
		)
	}
	record, err := json.Marshal(map[string]any{
		"parameters": map[string]any{
			"command":                 "simplify",
			"reduce_to_site_topology": true,
			"source_sequence_length":  ts.SequenceLength,
			"source_num_nodes":        ts.Nodes.NumRows(),
			"source_num_edges":        ts.Edges.NumRows(),
		},
	})
	if err != nil {
		return nil, err
	}
	out.Provenances.Add([]byte(time.Now().UTC().Format(time.RFC3339)), record)

	return out, nil
}

func sitesBreakpoints(positions []float64, sequenceLength float64) []float64 {
	bp := make([]float64, 0, len(positions)+2)
	bp = append(bp, 0)
	for _, p := range positions {
		if p != bp[len(bp)-1] {
			bp = append(bp, p)
		}
	}
	if bp[len(bp)-1] != sequenceLength {
		bp = append(bp, sequenceLength)
	}
	return bp
}

// nextBreakpoint returns the smallest breakpoint strictly greater than x.
func nextBreakpoint(breakpoints []float64, x float64) float64 {
	i := sort.SearchFloat64s(breakpoints, x)
	for i < len(breakpoints) && breakpoints[i] <= x {
		i++
	}
	return breakpoints[i]
}
