package tszip

import (
	"encoding/json"
	"runtime"
)

// Version is the tszip software version recorded in provenance records.
const Version = "1.0.0"

// provenanceRecord is the structured description of one encode call,
// stored as the archive's provenance root attribute.
type provenanceRecord struct {
	Software struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"software"`
	Parameters struct {
		Command      string `json:"command"`
		VariantsOnly bool   `json:"variants_only"`
	} `json:"parameters"`
	Environment struct {
		OS      string `json:"os"`
		Arch    string `json:"machine"`
		Runtime string `json:"runtime"`
	} `json:"environment"`
}

// newProvenance builds the provenance record for one encode call.
func newProvenance(variantsOnly bool) (json.RawMessage, error) {
	var rec provenanceRecord
	rec.Software.Name = FormatName
	rec.Software.Version = Version
	rec.Parameters.Command = "compress"
	rec.Parameters.VariantsOnly = variantsOnly
	rec.Environment.OS = runtime.GOOS
	rec.Environment.Arch = runtime.GOARCH
	rec.Environment.Runtime = runtime.Version()
	return json.Marshal(rec)
}
