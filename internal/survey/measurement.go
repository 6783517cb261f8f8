package survey

import (
	"errors"
	"sort"
)

// Station is a single directional survey sample. Position along the wellbore
// is keyed by MeasuredDepth; the remaining fields describe the bore's
// orientation and position at that depth.
type Station struct {
	MeasuredDepth     float64 `json:"measuredDepth"`
	TrueVerticalDepth float64 `json:"trueVerticalDepth"`
	Azimuth           float64 `json:"azimuth"`
	Inclination       float64 `json:"inclination"`
	DeviationNS       float64 `json:"deviationNS"`
	DeviationEW       float64 `json:"deviationEW"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
}

// MeasurementSet is the wire and storage shape of a directional survey:
// eight parallel columns, position i in every column referring to the same
// physical sample. MeasuredDepth is the ordering column and is kept strictly
// ascending with no duplicates whenever the set is at rest.
type MeasurementSet struct {
	MeasuredDepth     []float64 `json:"measuredDepth" bson:"measured_depth"`
	TrueVerticalDepth []float64 `json:"trueVerticalDepth" bson:"true_vertical_depth"`
	Azimuth           []float64 `json:"azimuth" bson:"azimuth"`
	Inclination       []float64 `json:"inclination" bson:"inclination"`
	DeviationNS       []float64 `json:"deviationNS" bson:"deviation_ns"`
	DeviationEW       []float64 `json:"deviationEW" bson:"deviation_ew"`
	Latitude          []float64 `json:"latitude" bson:"latitude"`
	Longitude         []float64 `json:"longitude" bson:"longitude"`
}

// ErrRaggedColumns is returned when the eight columns do not share a length.
var ErrRaggedColumns = errors.New("measurement columns must have equal length")

// Len returns the number of stations. Call CheckShape first; Len reports the
// key column's length without validating the others.
func (m MeasurementSet) Len() int {
	return len(m.MeasuredDepth)
}

// CheckShape verifies that all eight columns share a length.
func (m MeasurementSet) CheckShape() error {
	n := len(m.MeasuredDepth)
	if len(m.TrueVerticalDepth) != n ||
		len(m.Azimuth) != n ||
		len(m.Inclination) != n ||
		len(m.DeviationNS) != n ||
		len(m.DeviationEW) != n ||
		len(m.Latitude) != n ||
		len(m.Longitude) != n {
		return ErrRaggedColumns
	}
	return nil
}

// Station returns the sample at position i.
func (m MeasurementSet) Station(i int) Station {
	return Station{
		MeasuredDepth:     m.MeasuredDepth[i],
		TrueVerticalDepth: m.TrueVerticalDepth[i],
		Azimuth:           m.Azimuth[i],
		Inclination:       m.Inclination[i],
		DeviationNS:       m.DeviationNS[i],
		DeviationEW:       m.DeviationEW[i],
		Latitude:          m.Latitude[i],
		Longitude:         m.Longitude[i],
	}
}

// Stations converts the columnar set into a row view. The row view makes the
// equal-length invariant structural, so the merge engine operates on it.
func (m MeasurementSet) Stations() []Station {
	rows := make([]Station, m.Len())
	for i := range rows {
		rows[i] = m.Station(i)
	}
	return rows
}

// FromStations builds a columnar set from a row view.
func FromStations(rows []Station) MeasurementSet {
	m := MeasurementSet{
		MeasuredDepth:     make([]float64, len(rows)),
		TrueVerticalDepth: make([]float64, len(rows)),
		Azimuth:           make([]float64, len(rows)),
		Inclination:       make([]float64, len(rows)),
		DeviationNS:       make([]float64, len(rows)),
		DeviationEW:       make([]float64, len(rows)),
		Latitude:          make([]float64, len(rows)),
		Longitude:         make([]float64, len(rows)),
	}
	for i, r := range rows {
		m.MeasuredDepth[i] = r.MeasuredDepth
		m.TrueVerticalDepth[i] = r.TrueVerticalDepth
		m.Azimuth[i] = r.Azimuth
		m.Inclination[i] = r.Inclination
		m.DeviationNS[i] = r.DeviationNS
		m.DeviationEW[i] = r.DeviationEW
		m.Latitude[i] = r.Latitude
		m.Longitude[i] = r.Longitude
	}
	return m
}

// IsSorted reports whether MeasuredDepth is strictly ascending.
func (m MeasurementSet) IsSorted() bool {
	for i := 1; i < len(m.MeasuredDepth); i++ {
		if m.MeasuredDepth[i] <= m.MeasuredDepth[i-1] {
			return false
		}
	}
	return true
}

// indexed pairs a row with its position in the client payload, so conflicts
// can report the original index after sorting.
type indexed struct {
	row Station
	idx int
}

// normalizeStations sorts payload rows ascending by measured depth, keeping
// each row's original payload position. The sort is stable so equal depths
// keep submission order.
func normalizeStations(m MeasurementSet) []indexed {
	rows := make([]indexed, m.Len())
	for i := range rows {
		rows[i] = indexed{row: m.Station(i), idx: i}
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].row.MeasuredDepth < rows[b].row.MeasuredDepth
	})
	return rows
}

// indexedKey pairs a delete key with its position in the client payload.
type indexedKey struct {
	key float64
	idx int
}

func normalizeKeys(keys []float64) []indexedKey {
	out := make([]indexedKey, len(keys))
	for i, k := range keys {
		out[i] = indexedKey{key: k, idx: i}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].key < out[b].key })
	return out
}
