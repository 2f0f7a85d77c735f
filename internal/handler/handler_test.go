package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/insurang/lead-funnel/internal/handler"
	"github.com/insurang/lead-funnel/internal/models"
	"github.com/insurang/lead-funnel/internal/repository"
	"github.com/insurang/lead-funnel/internal/service"
	"github.com/insurang/lead-funnel/internal/service/mocks"
	"github.com/insurang/lead-funnel/internal/validation"
)

type handlerMocks struct {
	lead     *mocks.MockLeadService
	admin    *mocks.MockAdminService
	track    *mocks.MockTrackService
	settings *mocks.MockSettingsService
	handler  *handler.Handler
}

func newHandler(ctrl *gomock.Controller) *handlerMocks {
	m := &handlerMocks{
		lead:     mocks.NewMockLeadService(ctrl),
		admin:    mocks.NewMockAdminService(ctrl),
		track:    mocks.NewMockTrackService(ctrl),
		settings: mocks.NewMockSettingsService(ctrl),
	}
	svc := &service.Service{
		Lead:     m.lead,
		Admin:    m.admin,
		Track:    m.track,
		Settings: m.settings,
	}
	m.handler = handler.NewHandler(svc, zap.NewNop())
	return m
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestSubmitLead_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHandler(ctrl)
	m.lead.EXPECT().
		Submit(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&service.SubmitResult{LeadID: 42}, nil)

	payload := `{"offer_slug":"insurance-guide","name":"김보험","email":"kim@example.com","phone":"01012345678","consent_privacy":true}`
	req := httptest.NewRequest("POST", "/api/leads", bytes.NewBufferString(payload))
	w := httptest.NewRecorder()

	m.handler.SubmitLead(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(42), body["data"].(map[string]interface{})["lead_id"])
}

func TestSubmitLead_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHandler(ctrl)
	m.lead.EXPECT().
		Submit(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, &service.ValidationError{Fields: validation.FieldErrors{"email": "is invalid"}})

	req := httptest.NewRequest("POST", "/api/leads", bytes.NewBufferString(`{"email":"bad"}`))
	w := httptest.NewRecorder()

	m.handler.SubmitLead(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "VALIDATION_FAILED", body["error"])
	assert.Equal(t, "입력 내용을 다시 확인해 주세요.", body["message"])
	assert.Equal(t, "is invalid", body["errors"].(map[string]interface{})["email"])
}

func TestSubmitLead_RateLimited(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHandler(ctrl)
	m.lead.EXPECT().
		Submit(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, service.ErrRateLimited)

	req := httptest.NewRequest("POST", "/api/leads", bytes.NewBufferString(`{}`))
	w := httptest.NewRecorder()

	m.handler.SubmitLead(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", body["error"])
	assert.Equal(t, "요청이 너무 많습니다. 잠시 후 다시 시도해 주세요.", body["message"])
}

func TestSubmitLead_PersistenceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHandler(ctrl)
	m.lead.EXPECT().
		Submit(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, &service.PersistenceError{Err: errors.New("insert failed")})

	req := httptest.NewRequest("POST", "/api/leads", bytes.NewBufferString(`{}`))
	w := httptest.NewRecorder()

	m.handler.SubmitLead(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "INTERNAL_ERROR", body["error"])
	assert.Equal(t, "일시적인 오류가 발생했습니다. 잠시 후 다시 시도해 주세요.", body["message"])
}

func TestSubmitLead_MalformedJSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHandler(ctrl)

	req := httptest.NewRequest("POST", "/api/leads", bytes.NewBufferString(`{not json`))
	w := httptest.NewRecorder()

	m.handler.SubmitLead(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "INVALID_REQUEST", body["error"])
	assert.Equal(t, "요청을 처리할 수 없습니다. 입력 내용을 확인해 주세요.", body["message"])
}

func TestSubmitLead_ClientIdentifierForwarded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHandler(ctrl)
	m.lead.EXPECT().
		Submit(gomock.Any(), gomock.Any(), "203.0.113.9").
		Return(&service.SubmitResult{LeadID: 1}, nil)

	req := httptest.NewRequest("POST", "/api/leads", bytes.NewBufferString(`{}`))
	req.Header.Set("CF-Connecting-IP", "203.0.113.9")
	w := httptest.NewRecorder()

	m.handler.SubmitLead(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetOffer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHandler(ctrl)
	m.lead.EXPECT().GetOffer(gomock.Any(), "insurance-guide").Return(&models.Offer{
		ID:     1,
		Slug:   "insurance-guide",
		Name:   "보험 가이드",
		Status: models.OfferStatusActive,
	}, nil)

	req := httptest.NewRequest("GET", "/api/offers?slug=insurance-guide", nil)
	w := httptest.NewRecorder()

	m.handler.GetOffer(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "insurance-guide", body["data"].(map[string]interface{})["slug"])
}

func TestGetOffer_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHandler(ctrl)
	m.lead.EXPECT().GetOffer(gomock.Any(), "nope").Return(nil, nil)

	req := httptest.NewRequest("GET", "/api/offers?slug=nope", nil)
	w := httptest.NewRecorder()

	m.handler.GetOffer(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "NOT_FOUND", body["error"])
	assert.Equal(t, "요청하신 자료를 찾을 수 없습니다.", body["message"])
}

func TestGetOffer_MissingSlug(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHandler(ctrl)

	req := httptest.NewRequest("GET", "/api/offers", nil)
	w := httptest.NewRecorder()

	m.handler.GetOffer(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHandler(ctrl)
	m.track.EXPECT().Track(gomock.Any(), gomock.Any()).Return(nil)

	payload := `{"type":"page_view","session_id":"sess-1","page_path":"/"}`
	req := httptest.NewRequest("POST", "/api/track", bytes.NewBufferString(payload))
	w := httptest.NewRecorder()

	m.handler.Track(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["success"])
}

func TestTrack_InvalidInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHandler(ctrl)
	m.track.EXPECT().Track(gomock.Any(), gomock.Any()).Return(errors.New("unknown track type"))

	req := httptest.NewRequest("POST", "/api/track", bytes.NewBufferString(`{"type":"click"}`))
	w := httptest.NewRecorder()

	m.handler.Track(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListLeads(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHandler(ctrl)
	m.admin.EXPECT().ListLeads(gomock.Any(), 50, 0).Return([]*models.LeadListItem{
		{
			Lead:        models.Lead{ID: 1, Name: "김보험"},
			EmailStatus: models.MessageStatusSuccess,
			SMSStatus:   models.MessageStatusPending,
		},
	}, nil)

	req := httptest.NewRequest("GET", "/api/admin/leads", nil)
	w := httptest.NewRecorder()

	m.handler.ListLeads(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	leads := body["data"].([]interface{})
	require.Len(t, leads, 1)
	assert.Equal(t, "success", leads[0].(map[string]interface{})["email_status"])
}

func TestListLeads_CustomPagination(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHandler(ctrl)
	m.admin.EXPECT().ListLeads(gomock.Any(), 10, 20).Return(nil, nil)

	req := httptest.NewRequest("GET", "/api/admin/leads?limit=10&offset=20", nil)
	w := httptest.NewRecorder()

	m.handler.ListLeads(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListLeads_DetailByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHandler(ctrl)
	m.admin.EXPECT().GetLead(gomock.Any(), int64(7)).Return(&models.LeadDetail{
		Lead: models.Lead{ID: 7, Name: "김보험"},
	}, nil)

	req := httptest.NewRequest("GET", "/api/admin/leads?id=7", nil)
	w := httptest.NewRecorder()

	m.handler.ListLeads(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(7), body["data"].(map[string]interface{})["id"])
}

func TestListLeads_DetailNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHandler(ctrl)
	m.admin.EXPECT().GetLead(gomock.Any(), int64(999)).Return(nil, nil)

	req := httptest.NewRequest("GET", "/api/admin/leads?id=999", nil)
	w := httptest.NewRecorder()

	m.handler.ListLeads(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	// Admin responses stay machine-readable, no visitor-facing text.
	body := decodeBody(t, w)
	assert.Equal(t, "NOT_FOUND", body["error"])
	assert.NotContains(t, body, "message")
}

func TestResetSequenceLog(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHandler(ctrl)
	m.admin.EXPECT().ResetSequenceLog(gomock.Any(), int64(10)).Return(nil)

	req := httptest.NewRequest("POST", "/api/admin/sequences/logs", bytes.NewBufferString(`{"log_id":10}`))
	w := httptest.NewRecorder()

	m.handler.ResetSequenceLog(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResetSequenceLog_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHandler(ctrl)
	m.admin.EXPECT().ResetSequenceLog(gomock.Any(), int64(10)).Return(repository.ErrNotFound)

	req := httptest.NewRequest("POST", "/api/admin/sequences/logs", bytes.NewBufferString(`{"log_id":10}`))
	w := httptest.NewRecorder()

	m.handler.ResetSequenceLog(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSequenceLogs_StatusFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHandler(ctrl)
	m.admin.EXPECT().
		ListSequenceLogs(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter models.SequenceLogFilter) (*service.SequenceLogPage, error) {
			require.NotNil(t, filter.Status)
			assert.Equal(t, models.SequenceLogStatusFailed, *filter.Status)
			return &service.SequenceLogPage{Limit: filter.Limit, Offset: filter.Offset}, nil
		})

	req := httptest.NewRequest("GET", "/api/admin/sequences/logs?status=failed", nil)
	w := httptest.NewRecorder()

	m.handler.ListSequenceLogs(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListSequenceLogs_InvalidStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHandler(ctrl)

	req := httptest.NewRequest("GET", "/api/admin/sequences/logs?status=bogus", nil)
	w := httptest.NewRecorder()

	m.handler.ListSequenceLogs(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSettings(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHandler(ctrl)
	m.settings.EXPECT().All(gomock.Any()).Return([]service.MaskedSetting{
		{Key: "email_api_key", Value: "***"},
		{Key: "email_from", Value: "noreply@insurang.kr"},
	}, nil)

	req := httptest.NewRequest("GET", "/api/admin/settings", nil)
	w := httptest.NewRecorder()

	m.handler.GetSettings(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	settings := body["data"].([]interface{})
	assert.Equal(t, "***", settings[0].(map[string]interface{})["value"])
}

func TestUpdateSettings(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHandler(ctrl)
	m.settings.EXPECT().
		Update(gomock.Any(), map[string]string{"sms_sender": "0299998888"}).
		Return(nil)

	req := httptest.NewRequest("POST", "/api/admin/settings", bytes.NewBufferString(`{"sms_sender":"0299998888"}`))
	w := httptest.NewRecorder()

	m.handler.UpdateSettings(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		wantedCode int
	}{
		{"healthy", service.HealthHealthy, http.StatusOK},
		{"degraded still serves", service.HealthDegraded, http.StatusOK},
		{"unhealthy", service.HealthUnhealthy, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			health := mocks.NewMockHealthService(ctrl)
			health.EXPECT().GetHealth().Return(&service.HealthStatus{Status: tt.status})

			h := handler.NewHandler(&service.Service{Health: health}, zap.NewNop())

			req := httptest.NewRequest("GET", "/health", nil)
			w := httptest.NewRecorder()

			h.HealthCheck(w, req)

			assert.Equal(t, tt.wantedCode, w.Code)
			assert.Equal(t, tt.status, decodeBody(t, w)["status"])
		})
	}
}

func TestGetStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHandler(ctrl)
	m.admin.EXPECT().Stats(gomock.Any()).Return(&models.DashboardStats{
		TotalLeads: 120,
		LeadsToday: 4,
	}, nil)

	req := httptest.NewRequest("GET", "/api/admin/stats", nil)
	w := httptest.NewRecorder()

	m.handler.GetStats(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(120), body["data"].(map[string]interface{})["total_leads"])
}
