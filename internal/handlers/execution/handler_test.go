package execution

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/codearena.net/internal/domain"
	"gitlab.com/codearena.net/internal/static/errs"
)

type fakeService struct {
	submitted *domain.Submission
	jobID     string
	submitErr error

	record *domain.JobRecord
	getErr error

	outcome domain.ExecutionOutcome
	runErr  error
}

func (f *fakeService) SubmitCode(_ context.Context, sub *domain.Submission) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.submitted = sub
	return f.jobID, nil
}

func (f *fakeService) GetJob(_ context.Context, jobID string) (*domain.JobRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.record, nil
}

func (f *fakeService) RunCode(_ context.Context, code string, language domain.Language, input, entryPoint string) (domain.ExecutionOutcome, error) {
	if f.runErr != nil {
		return domain.ExecutionOutcome{}, f.runErr
	}
	return f.outcome, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

func newRouter(svc *fakeService) *mux.Router {
	router := mux.NewRouter()
	NewExecutionHandler(svc, nopLogger{}).RegisterRoutes(router)
	return router
}

func TestExecuteAccepted(t *testing.T) {
	svc := &fakeService{jobID: "0b54ae31-2a48-4c5a-a279-6a2a4a5a915e"}
	router := newRouter(svc)

	body := `{"code":"def twoSum(nums, target): return [0, 1]","language":"python","testCases":[{"input":"[]","expectedOutput":"[0, 1]"}],"battleId":"b-9","userId":"u-3"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/execute", strings.NewReader(body)))

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp ExecuteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, svc.jobID, resp.JobID)
	assert.Equal(t, "queued", resp.Status)

	require.NotNil(t, svc.submitted)
	assert.Equal(t, domain.LanguagePython, svc.submitted.Language)
	assert.Equal(t, "b-9", svc.submitted.BattleID)
	assert.Equal(t, "u-3", svc.submitted.UserID)
	assert.Len(t, svc.submitted.TestCases, 1)
}

func TestExecuteValidationError(t *testing.T) {
	svc := &fakeService{submitErr: errs.UnsupportedLanguage}
	router := newRouter(svc)

	body := `{"code":"x","language":"cobol","testCases":[{"input":"","expectedOutput":""}]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/execute", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported language")
}

func TestExecuteMalformedBody(t *testing.T) {
	router := newRouter(&fakeService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/execute", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExecuteInternalError(t *testing.T) {
	svc := &fakeService{submitErr: errs.InternalError}
	router := newRouter(svc)

	body := `{"code":"x","language":"python","testCases":[{"input":"","expectedOutput":""}]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/execute", strings.NewReader(body)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetJobFound(t *testing.T) {
	svc := &fakeService{record: &domain.JobRecord{
		JobID:  "0b54ae31-2a48-4c5a-a279-6a2a4a5a915e",
		Status: domain.JobStatusCompleted,
		Report: &domain.JobReport{TotalTests: 2, PassedTests: 2},
	}}
	router := newRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/0b54ae31-2a48-4c5a-a279-6a2a4a5a915e", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var record domain.JobRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, domain.JobStatusCompleted, record.Status)
	require.NotNil(t, record.Report)
	assert.Equal(t, 2, record.Report.PassedTests)
}

func TestGetJobNotFound(t *testing.T) {
	svc := &fakeService{getErr: errs.JobNotFound}
	router := newRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/0b54ae31-2a48-4c5a-a279-6a2a4a5a915e", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetJobMalformedIDIsNotFound(t *testing.T) {
	router := newRouter(&fakeService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/not-a-uuid", nil))

	// A non-uuid can never name a job, so it reads as unknown rather
	// than malformed.
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "job not found")
}

func TestRunReturnsOutcome(t *testing.T) {
	svc := &fakeService{outcome: domain.ExecutionOutcome{Succeeded: true, Stdout: "hi\n", ElapsedMs: 7}}
	router := newRouter(svc)

	body := `{"code":"print('hi')","language":"python"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/run", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "hi\n", payload["output"])
}

func TestRunValidationError(t *testing.T) {
	svc := &fakeService{runErr: errs.MissingSourceCode}
	router := newRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/run", strings.NewReader(`{"language":"python"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	router := newRouter(&fakeService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
