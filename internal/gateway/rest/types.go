package rest

import (
	"surveyd/internal/survey"
)

// CreateSurveyRequest is one record of a survey creation request. The eight
// measurement columns are inlined from the embedded set.
type CreateSurveyRequest struct {
	ChosenID        string  `json:"chosenID"`
	DataSource      string  `json:"dataSource"`
	ProjectID       *string `json:"projectID"`
	SpatialDataType string  `json:"spatialDataType"`

	survey.MeasurementSet
}

// Payload converts the wire record to the domain payload.
func (r CreateSurveyRequest) Payload() survey.Payload {
	return survey.Payload{
		ChosenID:        r.ChosenID,
		DataSource:      r.DataSource,
		SpatialDataType: r.SpatialDataType,
		ProjectID:       r.ProjectID,
		Measurements:    r.MeasurementSet,
	}
}

// UpdateSurveyRequest carries the three sub-payloads of a survey update.
type UpdateSurveyRequest struct {
	DataSource      string                 `json:"dataSource"`
	SpatialDataType string                 `json:"spatialDataType"`
	Add             *survey.MeasurementSet `json:"add"`
	Update          *survey.MeasurementSet `json:"update"`
	Remove          []float64              `json:"remove"`
}

// ListResponse is the body of a survey list page.
type ListResponse struct {
	Data []SurveyResponse `json:"data"`
}

// SurveyResponse is the outward shape of one stored record.
type SurveyResponse struct {
	ID              string  `json:"id"`
	WellID          string  `json:"wellID"`
	ChosenID        string  `json:"chosenID"`
	DataSource      string  `json:"dataSource"`
	SpatialDataType string  `json:"spatialDataType"`
	ProjectID       *string `json:"projectID,omitempty"`

	survey.MeasurementSet

	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// DeleteResponse reports how many records a delete removed.
type DeleteResponse struct {
	Updated int64 `json:"updated"`
}
