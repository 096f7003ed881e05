// Package plan defines the canonical weekly schedule model shared by the
// extractors, the identity resolver and the record store.
package plan

// Meal is one distinct dish with its stable database id.
type Meal struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Day holds the dish texts served on one date, keyed by canonical category.
// A category present in Meals always carries non-empty text.
type Day struct {
	Weekday string            `json:"weekday"`
	Meals   map[string]string `json:"meals"`
}

// Mealplan is one published week of day schedules. Days is keyed by ISO date
// (YYYY-MM-DD); every date belongs to the ISO week (Year, Week).
type Mealplan struct {
	Year int            `json:"year"`
	Week int            `json:"week"`
	Days map[string]Day `json:"days"`
}

// ResolvedDay mirrors Day after identity resolution: categories map to meal
// ids instead of raw text.
type ResolvedDay struct {
	Weekday string
	Meals   map[string]int64
}

// ResolvedPlan is the durable form of a Mealplan handed to the record store.
type ResolvedPlan struct {
	Year int
	Week int
	Days map[string]ResolvedDay
}

// StoredDay is a day read back from the record store, with full meal records
// where a category was served and nil where it was not.
type StoredDay struct {
	Weekday string           `json:"weekday"`
	Meals   map[string]*Meal `json:"meals"`
}

// StoredPlan is a week read back from the record store.
type StoredPlan struct {
	Year int                  `json:"year"`
	Week int                  `json:"week"`
	Days map[string]StoredDay `json:"days"`
}
