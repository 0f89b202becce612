package store

// Season is the coarse agricultural season used for prompt enrichment.
type Season string

const (
	SeasonSummer  Season = "Summer"
	SeasonMonsoon Season = "Monsoon"
	SeasonWinter  Season = "Winter"
	SeasonSpring  Season = "Spring"
)

// ContextRecord is the singleton ambient context injected into every prompt.
// Updates overwrite the whole record.
type ContextRecord struct {
	Season    Season `json:"season,omitempty"`
	Location  string `json:"location,omitempty"`
	CropCycle string `json:"cropCycle,omitempty"`
	Festival  string `json:"festival,omitempty"`
}

// Empty reports whether no field is set, in which case the prompt assembler
// skips the context section.
func (c *ContextRecord) Empty() bool {
	return c == nil || (c.Season == "" && c.Location == "" && c.CropCycle == "" && c.Festival == "")
}
