// pkg/api/analysis_v1.go
package api

// OTURefV1 identifies the OTU a diagnosed sequence belongs to, pinned
// to the reference version the index was built from.
type OTURefV1 struct {
	ID      string `json:"id" bson:"id"`
	Version int    `json:"version" bson:"version"`
}

// HitV1 is one diagnosed reference sequence.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type HitV1 struct {
	ID  string   `json:"id" bson:"id"`
	OTU OTURefV1 `json:"otu" bson:"otu"`

	// Mixing proportion and best-hit summaries from reassignment.
	Pi    float64 `json:"pi" bson:"pi"`
	Best  float64 `json:"best" bson:"best"`
	High  float64 `json:"high" bson:"high"`
	Low   float64 `json:"low" bson:"low"`
	Reads int     `json:"reads" bson:"reads"`

	// Align holds the collapsed (position, depth) coverage coordinates.
	Align [][2]int `json:"align" bson:"align"`

	// Coverage is the covered fraction of the sequence; Depth the mean
	// read depth.
	Coverage float64 `json:"coverage" bson:"coverage"`
	Depth    int     `json:"depth" bson:"depth"`
}

// AnalysisResultsV1 is the stable schema for a completed analysis,
// stored on the analysis document or in the pathoscope.json fallback
// file.
type AnalysisResultsV1 struct {
	Ready           bool    `json:"ready" bson:"ready"`
	ReadCount       int     `json:"read_count" bson:"read_count"`
	SubtractedCount int     `json:"subtracted_count" bson:"subtracted_count"`
	Diagnosis       []HitV1 `json:"diagnosis" bson:"diagnosis"`
}
