// Package service orchestrates survey writes: resolve the well, load the
// current measurement set, validate, merge, persist through the downstream
// import collaborator, and shape a per-record status.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"surveyd/internal/events"
	"surveyd/internal/importer"
	"surveyd/internal/storage"
	"surveyd/internal/survey"
)

// Service wires the survey domain to its collaborators. The
// load → merge → persist sequence is not transactionally isolated; concurrent
// requests against the same well can race (accepted limitation, no per-well
// lock or CAS token).
type Service struct {
	wells    storage.WellStore
	surveys  storage.SurveyStore
	imports  importer.Client
	notifier *events.Notifier
}

// New creates a Service. notifier may be nil.
func New(wells storage.WellStore, surveys storage.SurveyStore, imports importer.Client, notifier *events.Notifier) *Service {
	return &Service{
		wells:    wells,
		surveys:  surveys,
		imports:  imports,
		notifier: notifier,
	}
}

// WellRef identifies the target well, either by internal id or by the
// (chosenID, dataSource, projectID) triple.
type WellRef struct {
	WellID     string
	ChosenID   string
	DataSource string
	ProjectID  *string
}

// UpdatePayload carries the three sub-payloads of a survey update. Each is
// independently validated and merged; conflicts from all three are pooled.
type UpdatePayload struct {
	DataSource      string
	SpatialDataType string
	Add             *survey.MeasurementSet
	Update          *survey.MeasurementSet
	Remove          []float64
}

// resolveWell enforces the exactly-one rule for chosen-ID resolution.
func (s *Service) resolveWell(ctx context.Context, ref WellRef) (*storage.Well, error) {
	if ref.WellID != "" {
		return s.wells.GetByID(ctx, ref.WellID)
	}

	wells, err := s.wells.FindByChosenID(ctx, ref.ChosenID, ref.DataSource, ref.ProjectID)
	if err != nil {
		return nil, err
	}
	switch len(wells) {
	case 0:
		return nil, storage.ErrNotFound
	case 1:
		return wells[0], nil
	default:
		return nil, storage.ErrAmbiguousWell
	}
}

// Create registers a new survey record for the well resolved from the
// payload's identity fields. The measurement set starts empty and the payload
// is merged in with Add.
func (s *Service) Create(ctx context.Context, p survey.Payload) RecordStatus {
	if errs := survey.RunValidators(p, survey.CreateValidators()); len(errs) > 0 {
		return badRequest(p.ChosenID, errs)
	}

	well, err := s.resolveWell(ctx, WellRef{
		ChosenID:   p.ChosenID,
		DataSource: p.DataSource,
		ProjectID:  p.ProjectID,
	})
	if err != nil {
		return wellResolutionStatus(p.ChosenID, err)
	}

	if _, err := s.surveys.GetByWell(ctx, well.ID); err == nil {
		return recordStatus(StatusConflict, p.ChosenID, well.ID, "survey already exists for well")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return internalError(p.ChosenID, well.ID, err)
	}

	merged, conflicts := survey.Add(survey.MeasurementSet{}, p.Measurements)
	if len(conflicts) > 0 {
		return conflictStatus(p.ChosenID, well.ID, conflicts)
	}

	rec := storage.NewSurveyRecord(well.ID, p)
	rec.Measurements = merged

	if st, ok := s.persist(ctx, rec, merged.Len()); !ok {
		st.ChosenID = p.ChosenID
		return st
	}

	s.notifier.SurveyChanged(ctx, events.OperationCreate, well.ID, rec.ID, merged.Len())

	st := recordStatus(StatusCreated, p.ChosenID, well.ID, "")
	st.RecordID = rec.ID
	return st
}

// Update applies the add, update, and remove sub-payloads to the well's
// current record in sequence. Any conflict from any sub-payload rejects the
// whole operation; nothing is persisted.
func (s *Service) Update(ctx context.Context, ref WellRef, p UpdatePayload) RecordStatus {
	well, err := s.resolveWell(ctx, ref)
	if err != nil {
		return wellResolutionStatus(ref.ChosenID, err)
	}

	rec, err := s.surveys.GetByWell(ctx, well.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return recordStatus(StatusNotFound, ref.ChosenID, well.ID, "no survey found for well")
		}
		return internalError(ref.ChosenID, well.ID, err)
	}

	var fieldErrs []survey.FieldError
	for _, sub := range []*survey.MeasurementSet{p.Add, p.Update} {
		if sub == nil {
			continue
		}
		payload := survey.Payload{Measurements: *sub}
		fieldErrs = append(fieldErrs, survey.RunValidators(payload, survey.MutationValidators())...)
	}
	if len(fieldErrs) > 0 {
		return badRequest(ref.ChosenID, fieldErrs)
	}

	merged := rec.Measurements
	var conflicts []survey.Conflict

	if p.Add != nil {
		var c []survey.Conflict
		merged, c = survey.Add(merged, *p.Add)
		conflicts = append(conflicts, c...)
	}
	if p.Update != nil {
		var c []survey.Conflict
		merged, c = survey.Update(merged, *p.Update)
		conflicts = append(conflicts, c...)
	}
	if len(p.Remove) > 0 {
		var c []survey.Conflict
		merged, c = survey.Delete(merged, p.Remove)
		conflicts = append(conflicts, c...)
	}
	if len(conflicts) > 0 {
		return conflictStatus(ref.ChosenID, well.ID, conflicts)
	}

	updated := *rec
	updated.Measurements = merged
	updated.UpdatedAt = time.Now().UnixMilli()
	if p.DataSource != "" {
		updated.DataSource = p.DataSource
	}
	if p.SpatialDataType != "" {
		updated.SpatialDataType = p.SpatialDataType
	}

	if st, ok := s.persist(ctx, &updated, merged.Len()); !ok {
		st.ChosenID = ref.ChosenID
		return st
	}

	s.notifier.SurveyChanged(ctx, events.OperationUpdate, well.ID, rec.ID, merged.Len())

	st := recordStatus(StatusOK, ref.ChosenID, well.ID, "")
	st.RecordID = rec.ID
	return st
}

// persist pushes the record downstream and reconciles the reported counts
// against the expected row count. A disagreement means a downstream partial
// failure; which specific rows failed is unknowable here, so the whole
// operation reports an unexpected error and nothing is considered committed.
func (s *Service) persist(ctx context.Context, rec *storage.SurveyRecord, expectedRows int) (RecordStatus, bool) {
	result, err := s.imports.Import(ctx, rec)
	if err != nil {
		return internalError("", rec.WellID, err), false
	}

	if got := result.Imported + result.Updated; got != expectedRows {
		err := fmt.Errorf("import service reported %d rows (imported=%d, updated=%d), expected %d",
			got, result.Imported, result.Updated, expectedRows)
		return internalError("", rec.WellID, err), false
	}

	return RecordStatus{}, true
}

// DeleteByWell removes the well's survey downstream. The delete count is
// defined as countBefore - countAfter clamped at zero, computed against this
// service's store; the externally reported count is only logged when it
// disagrees.
func (s *Service) DeleteByWell(ctx context.Context, wellID string) (int64, error) {
	if _, err := s.surveys.GetByWell(ctx, wellID); err != nil {
		return 0, err
	}

	before, err := s.surveys.CountByWell(ctx, wellID)
	if err != nil {
		return 0, err
	}

	result, err := s.imports.Delete(ctx, wellID)
	if err != nil {
		return 0, err
	}

	after, err := s.surveys.CountByWell(ctx, wellID)
	if err != nil {
		return 0, err
	}

	deleted := before - after
	if deleted < 0 {
		deleted = 0
	}
	if int64(result.Updated) != deleted {
		slog.Warn("Delete count mismatch with import service",
			"well_id", wellID,
			"reported", result.Updated,
			"observed", deleted,
		)
	}

	s.notifier.SurveyChanged(ctx, events.OperationDelete, wellID, "", 0)

	return deleted, nil
}

// Get returns the well's active survey record.
func (s *Service) Get(ctx context.Context, wellID string) (*storage.SurveyRecord, error) {
	return s.surveys.GetByWell(ctx, wellID)
}

// List returns a page of survey records.
func (s *Service) List(ctx context.Context, q storage.ListQuery) ([]*storage.SurveyRecord, error) {
	return s.surveys.List(ctx, q)
}

// Count returns the total number of records matching the query's filter.
func (s *Service) Count(ctx context.Context, q storage.ListQuery) (int64, error) {
	return s.surveys.Count(ctx, q)
}
