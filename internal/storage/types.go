package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"surveyd/internal/survey"
)

var (
	// ErrNotFound is returned when a record or well is not found.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguousWell is returned when a chosen ID resolves to more than one well.
	ErrAmbiguousWell = errors.New("more than one well found")
)

// IsCanceled returns true if the error is due to context cancellation or
// deadline exceeded, including errors wrapped by the MongoDB driver.
func IsCanceled(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "context canceled") || strings.Contains(errStr, "context deadline exceeded")
}

// Well identifies the single well a survey belongs to.
type Well struct {
	ID         string  `json:"id" bson:"_id"`
	ChosenID   string  `json:"chosenID" bson:"chosen_id"`
	DataSource string  `json:"dataSource" bson:"data_source"`
	ProjectID  *string `json:"projectID,omitempty" bson:"project_id,omitempty"`
	Name       string  `json:"name,omitempty" bson:"name,omitempty"`
}

// SurveyRecord is the stored document: one measurement set plus its owning
// well, project scope, and audit timestamps. At most one active record per
// well.
type SurveyRecord struct {
	ID              string  `json:"id" bson:"_id"`
	WellID          string  `json:"wellID" bson:"well_id"`
	ChosenID        string  `json:"chosenID" bson:"chosen_id"`
	DataSource      string  `json:"dataSource" bson:"data_source"`
	SpatialDataType string  `json:"spatialDataType" bson:"spatial_data_type"`
	ProjectID       *string `json:"projectID,omitempty" bson:"project_id,omitempty"`

	Measurements survey.MeasurementSet `json:"measurements" bson:"measurements"`

	// Unix milliseconds.
	CreatedAt int64 `json:"createdAt" bson:"created_at"`
	UpdatedAt int64 `json:"updatedAt" bson:"updated_at"`
}

// NewSurveyRecord creates a record with initialized metadata.
func NewSurveyRecord(wellID string, p survey.Payload) *SurveyRecord {
	now := time.Now().UnixMilli()
	return &SurveyRecord{
		ID:              uuid.New().String(),
		WellID:          wellID,
		ChosenID:        p.ChosenID,
		DataSource:      p.DataSource,
		SpatialDataType: p.SpatialDataType,
		ProjectID:       p.ProjectID,
		Measurements:    p.Measurements,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// ListQuery selects a page of survey records. Exactly one of Skip or AfterID
// is in play: AfterID is the decoded cursor and augments the filter with
// "id beyond cursor" in sort direction, keeping pages stable under concurrent
// inserts.
type ListQuery struct {
	WellID    string
	SortField string
	Desc      bool
	Skip      int
	Limit     int
	AfterID   string
}

// WellStore resolves wells.
type WellStore interface {
	// GetByID returns the well with the given internal identifier.
	GetByID(ctx context.Context, id string) (*Well, error)

	// FindByChosenID returns every well matching the
	// (chosenID, dataSource, projectID) triple. Callers enforce the
	// exactly-one rule.
	FindByChosenID(ctx context.Context, chosenID, dataSource string, projectID *string) ([]*Well, error)
}

// SurveyStore reads survey records. Writes flow through the downstream import
// collaborator, not this interface.
type SurveyStore interface {
	// GetByWell returns the active record owned by the well.
	GetByWell(ctx context.Context, wellID string) (*SurveyRecord, error)

	// List returns a page of records per the query.
	List(ctx context.Context, q ListQuery) ([]*SurveyRecord, error)

	// Count returns the total number of records matching the query's filter,
	// ignoring pagination.
	Count(ctx context.Context, q ListQuery) (int64, error)

	// CountByWell returns the number of records owned by the well.
	CountByWell(ctx context.Context, wellID string) (int64, error)
}
