package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyd/internal/service"
	"surveyd/internal/storage"
	"surveyd/internal/survey"
)

type stubService struct {
	createStatuses []service.RecordStatus
	createCalls    []survey.Payload

	updateStatus service.RecordStatus
	updateCalls  []service.UpdatePayload

	deleteCount int64
	deleteErr   error

	getRecord *storage.SurveyRecord
	getErr    error

	listRecords []*storage.SurveyRecord
	listErr     error
	listQueries []storage.ListQuery

	count    int64
	countErr error
}

func (s *stubService) Create(_ context.Context, p survey.Payload) service.RecordStatus {
	s.createCalls = append(s.createCalls, p)
	st := s.createStatuses[0]
	if len(s.createStatuses) > 1 {
		s.createStatuses = s.createStatuses[1:]
	}
	return st
}

func (s *stubService) Update(_ context.Context, _ service.WellRef, p service.UpdatePayload) service.RecordStatus {
	s.updateCalls = append(s.updateCalls, p)
	return s.updateStatus
}

func (s *stubService) DeleteByWell(_ context.Context, _ string) (int64, error) {
	return s.deleteCount, s.deleteErr
}

func (s *stubService) Get(_ context.Context, _ string) (*storage.SurveyRecord, error) {
	return s.getRecord, s.getErr
}

func (s *stubService) List(_ context.Context, q storage.ListQuery) ([]*storage.SurveyRecord, error) {
	s.listQueries = append(s.listQueries, q)
	return s.listRecords, s.listErr
}

func (s *stubService) Count(_ context.Context, _ storage.ListQuery) (int64, error) {
	return s.count, s.countErr
}

func newTestMux(svc *stubService) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandler(svc).RegisterRoutes(mux)
	return mux
}

func doRequest(t *testing.T, mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func testRecord(id string) *storage.SurveyRecord {
	return &storage.SurveyRecord{
		ID:              id,
		WellID:          "well-1",
		ChosenID:        "42-123-45678",
		DataSource:      "DI",
		SpatialDataType: "WGS84",
		Measurements: survey.FromStations([]survey.Station{
			{MeasuredDepth: 100, TrueVerticalDepth: 90, Latitude: 40, Longitude: -100},
		}),
		CreatedAt: 1700000000000,
		UpdatedAt: 1700000000000,
	}
}

const createBody = `{
	"chosenID": "42-123-45678",
	"dataSource": "DI",
	"spatialDataType": "WGS84",
	"measuredDepth": [100, 200],
	"trueVerticalDepth": [90, 180],
	"azimuth": [10, 20],
	"inclination": [1, 2],
	"deviationNS": [0, 1],
	"deviationEW": [0, -1],
	"latitude": [40, 40.1],
	"longitude": [-100, -100.1]
}`

func TestHandleCreateSingle(t *testing.T) {
	svc := &stubService{createStatuses: []service.RecordStatus{
		{Status: service.StatusCreated, Code: http.StatusCreated, WellID: "well-1", RecordID: "rec-1"},
	}}
	mux := newTestMux(svc)

	rr := doRequest(t, mux, http.MethodPost, "/api/v1/surveys", createBody)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var st service.RecordStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	assert.Equal(t, "rec-1", st.RecordID)

	require.Len(t, svc.createCalls, 1)
	p := svc.createCalls[0]
	assert.Equal(t, "42-123-45678", p.ChosenID)
	assert.Equal(t, []float64{100, 200}, p.Measurements.MeasuredDepth)
	assert.Equal(t, []float64{90, 180}, p.Measurements.TrueVerticalDepth)
}

func TestHandleCreateSingleBadRequestCode(t *testing.T) {
	svc := &stubService{createStatuses: []service.RecordStatus{
		{Status: service.StatusBadRequest, Code: http.StatusBadRequest},
	}}
	mux := newTestMux(svc)

	rr := doRequest(t, mux, http.MethodPost, "/api/v1/surveys", createBody)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleCreateBatchIsMultiStatus(t *testing.T) {
	svc := &stubService{createStatuses: []service.RecordStatus{
		{Status: service.StatusCreated, Code: http.StatusCreated},
		{Status: service.StatusConflict, Code: http.StatusConflict},
	}}
	mux := newTestMux(svc)

	rr := doRequest(t, mux, http.MethodPost, "/api/v1/surveys", "["+createBody+","+createBody+"]")

	assert.Equal(t, http.StatusMultiStatus, rr.Code)

	var statuses []service.RecordStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &statuses))
	require.Len(t, statuses, 2)
	assert.Equal(t, service.StatusCreated, statuses[0].Status)
	assert.Equal(t, service.StatusConflict, statuses[1].Status)
	assert.Len(t, svc.createCalls, 2)
}

func TestHandleCreateRejectsBadBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", "   "},
		{"malformed object", `{"chosenID": `},
		{"malformed array", `[{"chosenID": "x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{createStatuses: []service.RecordStatus{{}}}
			mux := newTestMux(svc)

			rr := doRequest(t, mux, http.MethodPost, "/api/v1/surveys", tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Empty(t, svc.createCalls)
		})
	}
}

func TestHandleGet(t *testing.T) {
	svc := &stubService{getRecord: testRecord("rec-1")}
	mux := newTestMux(svc)

	rr := doRequest(t, mux, http.MethodGet, "/api/v1/surveys/well-1", "")

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp SurveyResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "rec-1", resp.ID)
	assert.Equal(t, []float64{100}, resp.MeasuredDepth)
}

func TestHandleGetNotFound(t *testing.T) {
	svc := &stubService{getErr: storage.ErrNotFound}
	mux := newTestMux(svc)

	rr := doRequest(t, mux, http.MethodGet, "/api/v1/surveys/well-9", "")

	assert.Equal(t, http.StatusNotFound, rr.Code)

	var apiErr APIError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr))
	assert.Equal(t, ErrCodeNotFound, apiErr.Code)
}

func TestHandleUpdate(t *testing.T) {
	svc := &stubService{updateStatus: service.RecordStatus{Status: service.StatusOK, Code: http.StatusOK}}
	mux := newTestMux(svc)

	body := `{"add": {"measuredDepth": [300], "trueVerticalDepth": [270], "azimuth": [0], "inclination": [0], "deviationNS": [0], "deviationEW": [0], "latitude": [40], "longitude": [-100]}, "remove": [100]}`
	rr := doRequest(t, mux, http.MethodPut, "/api/v1/surveys/well-1", body)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, svc.updateCalls, 1)

	p := svc.updateCalls[0]
	require.NotNil(t, p.Add)
	assert.Equal(t, []float64{300}, p.Add.MeasuredDepth)
	assert.Nil(t, p.Update)
	assert.Equal(t, []float64{100}, p.Remove)
}

func TestHandleUpdateRequiresASubPayload(t *testing.T) {
	svc := &stubService{}
	mux := newTestMux(svc)

	rr := doRequest(t, mux, http.MethodPut, "/api/v1/surveys/well-1", `{"dataSource": "DI"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, svc.updateCalls)
}

func TestHandleDelete(t *testing.T) {
	svc := &stubService{deleteCount: 42}
	mux := newTestMux(svc)

	rr := doRequest(t, mux, http.MethodDelete, "/api/v1/surveys/well-1", "")

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp DeleteResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.Updated)
}

func TestHandleDeleteNotFound(t *testing.T) {
	svc := &stubService{deleteErr: storage.ErrNotFound}
	mux := newTestMux(svc)

	rr := doRequest(t, mux, http.MethodDelete, "/api/v1/surveys/well-9", "")

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleListTrimsExtraRow(t *testing.T) {
	records := []*storage.SurveyRecord{testRecord("rec-01"), testRecord("rec-02"), testRecord("rec-03")}
	svc := &stubService{listRecords: records}
	mux := newTestMux(svc)

	rr := doRequest(t, mux, http.MethodGet, "/api/v1/surveys?take=2", "")

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2, "the hasNext probe row must not leak into the page")

	link := rr.Header().Get("Link")
	assert.Contains(t, link, `rel="next"`)

	require.Len(t, svc.listQueries, 1)
	assert.Equal(t, 3, svc.listQueries[0].Limit)
}

func TestHandleListLastPageHasNoNext(t *testing.T) {
	svc := &stubService{listRecords: []*storage.SurveyRecord{testRecord("rec-1")}}
	mux := newTestMux(svc)

	rr := doRequest(t, mux, http.MethodGet, "/api/v1/surveys?take=2", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Header().Get("Link"), `rel="next"`)
}

func TestHandleListRejectsInvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"take too large", "/api/v1/surveys?take=500"},
		{"skip with cursor", "/api/v1/surveys?skip=10&cursor=" + encodeCursor("rec-1")},
		{"unsortable field", "/api/v1/surveys?sort=latitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(&stubService{})

			rr := doRequest(t, mux, http.MethodGet, tt.target, "")

			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestHandleListWellFilterFlowsToQuery(t *testing.T) {
	svc := &stubService{}
	mux := newTestMux(svc)

	doRequest(t, mux, http.MethodGet, "/api/v1/surveys?well=well-1&sort=-updatedAt", "")

	require.Len(t, svc.listQueries, 1)
	q := svc.listQueries[0]
	assert.Equal(t, "well-1", q.WellID)
	assert.Equal(t, "updatedAt", q.SortField)
	assert.True(t, q.Desc)
}

func TestHandleListHead(t *testing.T) {
	svc := &stubService{count: 51}
	mux := newTestMux(svc)

	rr := doRequest(t, mux, http.MethodHead, "/api/v1/surveys?skip=25&take=25", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "51", rr.Header().Get("X-Query-Count"))
	assert.Empty(t, rr.Body.Bytes())

	link := rr.Header().Get("Link")
	assert.Contains(t, link, `</api/v1/surveys?skip=50&take=25>; rel="next"`)
	assert.Contains(t, link, `</api/v1/surveys?take=25>; rel="prev"`)
	assert.Contains(t, link, `</api/v1/surveys?skip=50&take=25>; rel="last"`)
}

func TestHandleListHeadLastPage(t *testing.T) {
	svc := &stubService{count: 51}
	mux := newTestMux(svc)

	rr := doRequest(t, mux, http.MethodHead, "/api/v1/surveys?skip=50&take=25", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Header().Get("Link"), `rel="next"`)
}

func TestHandleListCursorMode(t *testing.T) {
	records := []*storage.SurveyRecord{testRecord("rec-01"), testRecord("rec-02")}
	svc := &stubService{listRecords: records}
	mux := newTestMux(svc)

	rr := doRequest(t, mux, http.MethodGet, "/api/v1/surveys?take=1&cursor="+encodeCursor("rec-00"), "")

	assert.Equal(t, http.StatusOK, rr.Code)

	require.Len(t, svc.listQueries, 1)
	assert.Equal(t, "rec-00", svc.listQueries[0].AfterID)

	link := rr.Header().Get("Link")
	assert.Contains(t, link, "cursor="+encodeCursor("rec-01"))
	assert.NotContains(t, link, `rel="last"`)
}

func TestHealthEndpoint(t *testing.T) {
	mux := newTestMux(&stubService{})

	rr := doRequest(t, mux, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
