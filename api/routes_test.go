package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailsift/api/middleware"
	"github.com/customeros/mailsift/dto"
	"github.com/customeros/mailsift/internal/enum"
	mailsift_errors "github.com/customeros/mailsift/internal/errors"
	"github.com/customeros/mailsift/internal/metrics"
	"github.com/customeros/mailsift/internal/models"
	"github.com/customeros/mailsift/internal/utils"
)

const testAPIKey = "secret"

type mockIngestionService struct {
	mock.Mock
}

func (m *mockIngestionService) RunIngestion(ctx context.Context, userID string) dto.RunReport {
	args := m.Called(utils.GetAppSourceFromContext(ctx), userID)
	return args.Get(0).(dto.RunReport)
}

func (m *mockIngestionService) Reclassify(ctx context.Context, emailID string) (*dto.Classification, error) {
	args := m.Called(emailID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Classification), args.Error(1)
}

func (m *mockIngestionService) UserReport(ctx context.Context, userID string) (*dto.ClassificationReport, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ClassificationReport), args.Error(1)
}

func (m *mockIngestionService) SweepStaging(ctx context.Context) (dto.SweepResult, error) {
	args := m.Called()
	return args.Get(0).(dto.SweepResult), args.Error(1)
}

func (m *mockIngestionService) AttachmentContent(ctx context.Context, attachmentID string) (*models.EmailAttachment, []byte, error) {
	args := m.Called(attachmentID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.EmailAttachment), args.Get(1).([]byte), args.Error(2)
}

func newRouter(t *testing.T, ingestion *mockIngestionService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	m := metrics.NewMetrics(prometheus.NewRegistry())
	m.IncClassification(enum.CategoryOther.String())
	RegisterRoutes(r, ingestion, m, testAPIKey)
	return r
}

func doRequest(r *gin.Engine, method, path, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if apiKey != "" {
		req.Header.Set(middleware.DefaultAPIKeyHeader, apiKey)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPublicRoutes(t *testing.T) {
	r := newRouter(t, &mockIngestionService{})

	health := doRequest(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, health.Code)
	assert.JSONEq(t, `{"status":"ok"}`, health.Body.String())

	metricsResp := doRequest(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, metricsResp.Code)
	assert.Contains(t, metricsResp.Body.String(), "mailsift_classifications_total")
}

func TestAPIKeyRequired(t *testing.T) {
	ingestion := &mockIngestionService{}
	r := newRouter(t, ingestion)

	missing := doRequest(r, http.MethodPost, "/v1/users/u1/ingestion", "")
	wrong := doRequest(r, http.MethodPost, "/v1/users/u1/ingestion", "nope")

	assert.Equal(t, http.StatusUnauthorized, missing.Code)
	assert.Contains(t, missing.Body.String(), "Missing API key")
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Contains(t, wrong.Body.String(), "Invalid API key")
	ingestion.AssertNotCalled(t, "RunIngestion", mock.Anything, mock.Anything)
}

func TestRunIngestion(t *testing.T) {
	ingestion := &mockIngestionService{}
	report := dto.RunReport{Success: true, RunID: "run-1", UserID: "u1", TotalMessages: 2, SavedCount: 1}
	ingestion.On("RunIngestion", AppSourceAPI, "u1").Return(report)
	r := newRouter(t, ingestion)

	w := doRequest(r, http.MethodPost, "/v1/users/u1/ingestion", testAPIKey)

	require.Equal(t, http.StatusOK, w.Code)
	var got dto.RunReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, 1, got.SavedCount)
	ingestion.AssertExpectations(t)
}

func TestRunIngestion_ReauthorizationRequired(t *testing.T) {
	ingestion := &mockIngestionService{}
	ingestion.On("RunIngestion", AppSourceAPI, "u1").Return(dto.RunReport{
		UserID:                  "u1",
		ReauthorizationRequired: true,
		Error:                   mailsift_errors.ErrReauthorizationRequired.Error(),
	})
	r := newRouter(t, ingestion)

	w := doRequest(r, http.MethodPost, "/v1/users/u1/ingestion", testAPIKey)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"reauthorizationRequired":true`)
}

func TestRunIngestion_ListingFailure(t *testing.T) {
	ingestion := &mockIngestionService{}
	ingestion.On("RunIngestion", AppSourceAPI, "u1").Return(dto.RunReport{UserID: "u1", Error: "connection reset"})
	r := newRouter(t, ingestion)

	w := doRequest(r, http.MethodPost, "/v1/users/u1/ingestion", testAPIKey)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestUserReport(t *testing.T) {
	ingestion := &mockIngestionService{}
	report := dto.NewClassificationReport()
	report.Add(dto.DefaultClassification("x"), false)
	ingestion.On("UserReport", "u1").Return(&report, nil)
	r := newRouter(t, ingestion)

	w := doRequest(r, http.MethodGet, "/v1/users/u1/report", testAPIKey)

	require.Equal(t, http.StatusOK, w.Code)
	var got dto.ClassificationReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Total)
	assert.Equal(t, 1, got.Categories["OTHER"])
}

func TestReclassify(t *testing.T) {
	ingestion := &mockIngestionService{}
	classification := dto.Classification{
		Category:   enum.CategoryRegulatoryCompliance,
		Department: enum.DepartmentLegal,
		Priority:   enum.PriorityHigh,
		Reason:     "audit notice",
	}
	ingestion.On("Reclassify", "email_1").Return(&classification, nil)
	ingestion.On("Reclassify", "email_missing").Return(nil, errors.Wrap(mailsift_errors.ErrEmailNotFound, "email_missing"))
	r := newRouter(t, ingestion)

	ok := doRequest(r, http.MethodPost, "/v1/emails/email_1/reclassify", testAPIKey)
	missing := doRequest(r, http.MethodPost, "/v1/emails/email_missing/reclassify", testAPIKey)

	assert.Equal(t, http.StatusOK, ok.Code)
	assert.Contains(t, ok.Body.String(), `"category":"REGULATORY_COMPLIANCE"`)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestSweepStaging(t *testing.T) {
	ingestion := &mockIngestionService{}
	ingestion.On("SweepStaging").Return(dto.SweepResult{Scanned: 3, Deleted: 2}, nil).Once()
	ingestion.On("SweepStaging").Return(dto.SweepResult{}, errors.New("disk gone")).Once()
	r := newRouter(t, ingestion)

	first := doRequest(r, http.MethodPost, "/v1/staging/sweep", testAPIKey)
	second := doRequest(r, http.MethodPost, "/v1/staging/sweep", testAPIKey)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.JSONEq(t, `{"scanned":3,"deleted":2,"failed":0}`, first.Body.String())
	assert.Equal(t, http.StatusInternalServerError, second.Code)
	assert.Contains(t, second.Body.String(), "disk gone")
}

func TestAttachmentContent(t *testing.T) {
	ingestion := &mockIngestionService{}
	ingestion.On("AttachmentContent", "file_1").Return(&models.EmailAttachment{Filename: "report.pdf", ContentType: "application/pdf"}, []byte("%PDF"), nil)
	ingestion.On("AttachmentContent", "file_2").Return(nil, nil, mailsift_errors.ErrAttachmentNotFound)
	r := newRouter(t, ingestion)

	ok := doRequest(r, http.MethodGet, "/v1/attachments/file_1/content", testAPIKey)
	missing := doRequest(r, http.MethodGet, "/v1/attachments/file_2/content", testAPIKey)

	assert.Equal(t, http.StatusOK, ok.Code)
	assert.Equal(t, "application/pdf", ok.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="report.pdf"`, ok.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF", ok.Body.String())
	assert.Equal(t, http.StatusNotFound, missing.Code)
}
