package store

import "time"

// MemoryCategory classifies a remembered fact about the user.
type MemoryCategory string

const (
	MemoryCategoryPersonal     MemoryCategory = "personal"
	MemoryCategoryAgricultural MemoryCategory = "agricultural"
	MemoryCategoryFinancial    MemoryCategory = "financial"
	MemoryCategoryFamily       MemoryCategory = "family"
	MemoryCategoryPreferences  MemoryCategory = "preferences"
	MemoryCategoryOther        MemoryCategory = "other"
)

// NormalizeMemoryCategory maps free-form model output onto the closed
// category set. Anything unrecognized lands in "other".
func NormalizeMemoryCategory(s string) MemoryCategory {
	switch MemoryCategory(s) {
	case MemoryCategoryPersonal, MemoryCategoryAgricultural, MemoryCategoryFinancial,
		MemoryCategoryFamily, MemoryCategoryPreferences:
		return MemoryCategory(s)
	default:
		return MemoryCategoryOther
	}
}

// MemoryRecord is one remembered fact. Records are immutable and kept
// newest-first in a single persisted collection.
type MemoryRecord struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Category  MemoryCategory `json:"category"`
	CreatedAt time.Time      `json:"createdAt"`
}
