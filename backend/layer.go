package backend

import "fmt"

// LayerFilter selects a subset of a feature layer by attribute expression.
type LayerFilter struct {
	URL    string `json:"url"`
	Filter string `json:"filter,omitempty"`
}

// Statistic is an aggregate the feature service can compute over a field.
type Statistic string

const (
	StatMin   Statistic = "min"
	StatMax   Statistic = "max"
	StatCount Statistic = "count"
)

// Unit is a linear unit understood by the geometry service.
type Unit int

// Kilometer is esriSRUnit_Kilometer.
const Kilometer Unit = 9036

const (
	// IDField is the stable integer id of the cities layer.
	IDField = "FID"
	// PopulationField may be null for some records.
	PopulationField = "population"
)

// PopulationAtLeast is the where clause for cities that meet a threshold.
func PopulationAtLeast(minPopulation int64) string {
	return fmt.Sprintf("%s >= %d", PopulationField, minPopulation)
}

// PopulationKnown is the where clause for cities with a population.
func PopulationKnown() string {
	return PopulationField + " IS NOT NULL"
}
