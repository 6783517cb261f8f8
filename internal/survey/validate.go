package survey

import (
	"fmt"
	"strings"
)

// DataSources enumerates the accepted survey data providers.
var DataSources = []string{"DI", "Aries", "IHS", "Enverus", "Internal", "PDWin", "Other"}

// SpatialDataTypes enumerates the accepted coordinate reference systems.
var SpatialDataTypes = []string{"NAD27", "NAD83", "WGS84"}

// FieldError is one validation violation. Row is the offending station index,
// or -1 for record-level violations. Violations are aggregated per record,
// never short-circuited.
type FieldError struct {
	Field   string `json:"field"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("%s[%d]: %s", e.Field, e.Row, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Payload is a client-submitted survey creation request after JSON parsing.
type Payload struct {
	ChosenID        string
	DataSource      string
	SpatialDataType string
	ProjectID       *string
	Measurements    MeasurementSet
}

// Validator inspects a payload and returns its violations. Validators are
// pure; the set to run is composed fresh per call rather than held in shared
// chains.
type Validator func(p Payload) []FieldError

// CreateValidators is the ordered validator set for survey creation.
func CreateValidators() []Validator {
	return []Validator{
		ValidateRequired,
		ValidateDataSource,
		ValidateSpatialDataType,
		ValidateShape,
		ValidateRanges,
	}
}

// MutationValidators is the ordered validator set for add/update sub-payloads
// of an existing record. Identity fields are already resolved, so only the
// measurement columns are checked.
func MutationValidators() []Validator {
	return []Validator{
		ValidateShape,
		ValidateRanges,
	}
}

// RunValidators applies every validator and pools the violations.
func RunValidators(p Payload, validators []Validator) []FieldError {
	var errs []FieldError
	for _, v := range validators {
		errs = append(errs, v(p)...)
	}
	return errs
}

// ValidateRequired checks the fields a creation payload must carry.
func ValidateRequired(p Payload) []FieldError {
	var errs []FieldError
	if p.ChosenID == "" {
		errs = append(errs, FieldError{Field: "chosenID", Row: -1, Message: "is required"})
	}
	if p.DataSource == "" {
		errs = append(errs, FieldError{Field: "dataSource", Row: -1, Message: "is required"})
	}
	if p.SpatialDataType == "" {
		errs = append(errs, FieldError{Field: "spatialDataType", Row: -1, Message: "is required"})
	}
	return errs
}

// ValidateDataSource checks the dataSource enum. Empty values are left to
// ValidateRequired so a missing field reports once.
func ValidateDataSource(p Payload) []FieldError {
	if p.DataSource == "" || contains(DataSources, p.DataSource) {
		return nil
	}
	return []FieldError{{
		Field:   "dataSource",
		Row:     -1,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(DataSources, ", ")),
	}}
}

// ValidateSpatialDataType checks the spatialDataType enum.
func ValidateSpatialDataType(p Payload) []FieldError {
	if p.SpatialDataType == "" || contains(SpatialDataTypes, p.SpatialDataType) {
		return nil
	}
	return []FieldError{{
		Field:   "spatialDataType",
		Row:     -1,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(SpatialDataTypes, ", ")),
	}}
}

// ValidateShape checks that the payload columns share a length and rejects
// empty payloads. Pure deletes never reach this validator.
func ValidateShape(p Payload) []FieldError {
	if err := p.Measurements.CheckShape(); err != nil {
		return []FieldError{{Field: "measuredDepth", Row: -1, Message: "all measurement columns must have equal length"}}
	}
	if p.Measurements.Len() == 0 {
		return []FieldError{{Field: "measuredDepth", Row: -1, Message: "must not be empty"}}
	}
	return nil
}

// ValidateRanges checks the domain ranges of every station, reporting each
// offending row individually. Columns are only walked when the shape check
// passes, so indexing is safe.
func ValidateRanges(p Payload) []FieldError {
	m := p.Measurements
	if m.CheckShape() != nil {
		return nil
	}

	var errs []FieldError
	for i := 0; i < m.Len(); i++ {
		if m.MeasuredDepth[i] < 0 {
			errs = append(errs, FieldError{Field: "measuredDepth", Row: i, Message: "must not be negative"})
		}
		if m.TrueVerticalDepth[i] < 0 {
			errs = append(errs, FieldError{Field: "trueVerticalDepth", Row: i, Message: "must not be negative"})
		}
		if m.Azimuth[i] < 0 {
			errs = append(errs, FieldError{Field: "azimuth", Row: i, Message: "must not be negative"})
		}
		if m.Inclination[i] < 0 || m.Inclination[i] > 180 {
			errs = append(errs, FieldError{Field: "inclination", Row: i, Message: "must be between 0 and 180"})
		}
		if m.Latitude[i] < -90 || m.Latitude[i] > 90 {
			errs = append(errs, FieldError{Field: "latitude", Row: i, Message: "must be between -90 and 90"})
		}
		if m.Longitude[i] < -180 || m.Longitude[i] > 180 {
			errs = append(errs, FieldError{Field: "longitude", Row: i, Message: "must be between -180 and 180"})
		}
	}
	return errs
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
