package trees

// NullID marks a missing table reference.
const NullID int32 = -1

// FlagSample marks a node as a sample in the node flags column.
const FlagSample uint32 = 1

// IndividualTable holds one row per individual.
type IndividualTable struct {
	Flags           []uint32
	Location        []float64
	LocationOffsets []uint64
	Parents         []int32
	ParentsOffsets  []uint64
	Metadata        []byte
	MetadataOffsets []uint64
	MetadataSchema  string
}

// NumRows returns the number of rows in the table.
func (t *IndividualTable) NumRows() int { return len(t.Flags) }

// Add appends a row and returns its id.
func (t *IndividualTable) Add(flags uint32, location []float64, parents []int32, metadata []byte) int32 {
	t.Flags = append(t.Flags, flags)
	t.Location = append(t.Location, location...)
	t.LocationOffsets = appendOffset(t.LocationOffsets, len(location))
	t.Parents = append(t.Parents, parents...)
	t.ParentsOffsets = appendOffset(t.ParentsOffsets, len(parents))
	t.Metadata = append(t.Metadata, metadata...)
	t.MetadataOffsets = appendOffset(t.MetadataOffsets, len(metadata))
	return int32(t.NumRows() - 1)
}

// NodeTable holds one row per genealogical node.
type NodeTable struct {
	Flags           []uint32
	Time            []float64
	Population      []int32
	Individual      []int32
	Metadata        []byte
	MetadataOffsets []uint64
	MetadataSchema  string
}

// NumRows returns the number of rows in the table.
func (t *NodeTable) NumRows() int { return len(t.Flags) }

// Add appends a row and returns its id.
func (t *NodeTable) Add(flags uint32, time float64, population, individual int32, metadata []byte) int32 {
	t.Flags = append(t.Flags, flags)
	t.Time = append(t.Time, time)
	t.Population = append(t.Population, population)
	t.Individual = append(t.Individual, individual)
	t.Metadata = append(t.Metadata, metadata...)
	t.MetadataOffsets = appendOffset(t.MetadataOffsets, len(metadata))
	return int32(t.NumRows() - 1)
}

// IsSample reports whether node id carries the sample flag.
func (t *NodeTable) IsSample(id int32) bool {
	return t.Flags[id]&FlagSample != 0
}

// EdgeTable holds one row per inheritance edge.
type EdgeTable struct {
	Left            []float64
	Right           []float64
	Parent          []int32
	Child           []int32
	Metadata        []byte
	MetadataOffsets []uint64
	MetadataSchema  string
}

// NumRows returns the number of rows in the table.
func (t *EdgeTable) NumRows() int { return len(t.Left) }

// Add appends a row and returns its id.
func (t *EdgeTable) Add(left, right float64, parent, child int32, metadata []byte) int32 {
	t.Left = append(t.Left, left)
	t.Right = append(t.Right, right)
	t.Parent = append(t.Parent, parent)
	t.Child = append(t.Child, child)
	t.Metadata = append(t.Metadata, metadata...)
	t.MetadataOffsets = appendOffset(t.MetadataOffsets, len(metadata))
	return int32(t.NumRows() - 1)
}

// MigrationTable holds one row per migration event.
type MigrationTable struct {
	Left            []float64
	Right           []float64
	Node            []int32
	Source          []int32
	Dest            []int32
	Time            []float64
	Metadata        []byte
	MetadataOffsets []uint64
	MetadataSchema  string
}

// NumRows returns the number of rows in the table.
func (t *MigrationTable) NumRows() int { return len(t.Node) }

// Add appends a row and returns its id.
func (t *MigrationTable) Add(left, right float64, node, source, dest int32, time float64, metadata []byte) int32 {
	t.Left = append(t.Left, left)
	t.Right = append(t.Right, right)
	t.Node = append(t.Node, node)
	t.Source = append(t.Source, source)
	t.Dest = append(t.Dest, dest)
	t.Time = append(t.Time, time)
	t.Metadata = append(t.Metadata, metadata...)
	t.MetadataOffsets = appendOffset(t.MetadataOffsets, len(metadata))
	return int32(t.NumRows() - 1)
}

// SiteTable holds one row per variant site.
type SiteTable struct {
	Position              []float64
	AncestralState        []byte
	AncestralStateOffsets []uint64
	Metadata              []byte
	MetadataOffsets       []uint64
	MetadataSchema        string
}

// NumRows returns the number of rows in the table.
func (t *SiteTable) NumRows() int { return len(t.Position) }

// Add appends a row and returns its id.
func (t *SiteTable) Add(position float64, ancestralState, metadata []byte) int32 {
	t.Position = append(t.Position, position)
	t.AncestralState = append(t.AncestralState, ancestralState...)
	t.AncestralStateOffsets = appendOffset(t.AncestralStateOffsets, len(ancestralState))
	t.Metadata = append(t.Metadata, metadata...)
	t.MetadataOffsets = appendOffset(t.MetadataOffsets, len(metadata))
	return int32(t.NumRows() - 1)
}

// MutationTable holds one row per mutation.
type MutationTable struct {
	Site                []int32
	Node                []int32
	Parent              []int32
	Time                []float64
	DerivedState        []byte
	DerivedStateOffsets []uint64
	Metadata            []byte
	MetadataOffsets     []uint64
	MetadataSchema      string
}

// NumRows returns the number of rows in the table.
func (t *MutationTable) NumRows() int { return len(t.Site) }

// Add appends a row and returns its id.
func (t *MutationTable) Add(site, node, parent int32, time float64, derivedState, metadata []byte) int32 {
	t.Site = append(t.Site, site)
	t.Node = append(t.Node, node)
	t.Parent = append(t.Parent, parent)
	t.Time = append(t.Time, time)
	t.DerivedState = append(t.DerivedState, derivedState...)
	t.DerivedStateOffsets = appendOffset(t.DerivedStateOffsets, len(derivedState))
	t.Metadata = append(t.Metadata, metadata...)
	t.MetadataOffsets = appendOffset(t.MetadataOffsets, len(metadata))
	return int32(t.NumRows() - 1)
}

// PopulationTable holds one row per population.
type PopulationTable struct {
	Metadata        []byte
	MetadataOffsets []uint64
	MetadataSchema  string
}

// NumRows returns the number of rows in the table.
func (t *PopulationTable) NumRows() int {
	if len(t.MetadataOffsets) == 0 {
		return 0
	}
	return len(t.MetadataOffsets) - 1
}

// Add appends a row and returns its id.
func (t *PopulationTable) Add(metadata []byte) int32 {
	t.Metadata = append(t.Metadata, metadata...)
	t.MetadataOffsets = appendOffset(t.MetadataOffsets, len(metadata))
	return int32(t.NumRows() - 1)
}

// ProvenanceTable holds one row per provenance record.
type ProvenanceTable struct {
	Timestamp        []byte
	TimestampOffsets []uint64
	Record           []byte
	RecordOffsets    []uint64
}

// NumRows returns the number of rows in the table.
func (t *ProvenanceTable) NumRows() int {
	if len(t.RecordOffsets) == 0 {
		return 0
	}
	return len(t.RecordOffsets) - 1
}

// Add appends a row and returns its id.
func (t *ProvenanceTable) Add(timestamp, record []byte) int32 {
	t.Timestamp = append(t.Timestamp, timestamp...)
	t.TimestampOffsets = appendOffset(t.TimestampOffsets, len(timestamp))
	t.Record = append(t.Record, record...)
	t.RecordOffsets = appendOffset(t.RecordOffsets, len(record))
	return int32(t.NumRows() - 1)
}

// TableSet is an ordered collection of the eight tree-sequence tables plus
// set-wide attributes.
type TableSet struct {
	SequenceLength float64
	TimeUnits      string
	Metadata       []byte
	MetadataSchema string

	Individuals IndividualTable
	Nodes       NodeTable
	Edges       EdgeTable
	Migrations  MigrationTable
	Sites       SiteTable
	Mutations   MutationTable
	Populations PopulationTable
	Provenances ProvenanceTable
}

// New returns an empty table set with canonical zero-row offset columns.
func New(sequenceLength float64) *TableSet {
	ts := &TableSet{SequenceLength: sequenceLength, TimeUnits: "unknown"}
	ts.Individuals.LocationOffsets = []uint64{0}
	ts.Individuals.ParentsOffsets = []uint64{0}
	ts.Individuals.MetadataOffsets = []uint64{0}
	ts.Nodes.MetadataOffsets = []uint64{0}
	ts.Edges.MetadataOffsets = []uint64{0}
	ts.Migrations.MetadataOffsets = []uint64{0}
	ts.Sites.AncestralStateOffsets = []uint64{0}
	ts.Sites.MetadataOffsets = []uint64{0}
	ts.Mutations.DerivedStateOffsets = []uint64{0}
	ts.Mutations.MetadataOffsets = []uint64{0}
	ts.Populations.MetadataOffsets = []uint64{0}
	ts.Provenances.TimestampOffsets = []uint64{0}
	ts.Provenances.RecordOffsets = []uint64{0}
	return ts
}

// Samples returns the ids of all nodes carrying the sample flag.
func (ts *TableSet) Samples() []int32 {
	var out []int32
	for i := range ts.Nodes.Flags {
		if ts.Nodes.Flags[i]&FlagSample != 0 {
			out = append(out, int32(i))
		}
	}
	return out
}
