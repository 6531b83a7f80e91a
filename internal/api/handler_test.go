package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dialysis-scheduler/config"
	"dialysis-scheduler/internal/attendance"
	"dialysis-scheduler/internal/booking"
	"dialysis-scheduler/internal/clock"
	"dialysis-scheduler/internal/db/dbtest"
	"dialysis-scheduler/internal/model"
	"dialysis-scheduler/internal/mw"
	"dialysis-scheduler/internal/notification"
	"dialysis-scheduler/internal/reschedule"
	"dialysis-scheduler/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

// newTestServer wires the full stack on an in-memory database with the clinic
// clock fixed at 2025-03-10 09:30 Asia/Manila.
func newTestServer(t *testing.T, webpushOptions *webpush.Options) *testServer {
	t.Helper()

	gormDB := dbtest.Open(t)
	dbtest.SeedMachines(t, gormDB, 15)
	for id := int64(1); id <= 20; id++ {
		dbtest.SeedPatient(t, gormDB, id, model.ScheduleMWF)
	}

	loc, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)
	clk := clock.NewFixed(loc, time.Date(2025, 3, 10, 9, 30, 0, 0, loc))

	logger := zap.NewNop()
	s := store.NewGormStore(gormDB)
	pool := notification.NewWorkerPool(1, 64, s, nil, logger)

	h := NewHandler(Deps{
		Store:        s,
		Initializer:  booking.NewInitializer(s, 15, logger),
		Bookings:     booking.NewService(s, clk, 15, logger),
		Reschedules:  reschedule.NewService(s, clk, pool, logger),
		Attendance:   attendance.NewService(s, clk, pool, 12, logger),
		MachineCache: cache.New(time.Minute, time.Minute),
		WebPush:      webpushOptions,
		Logger:       logger,
	})
	router := NewRouter(h, config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000, CacheTTLSeconds: 60})
	return &testServer{router: router, db: gormDB}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func TestSlotsEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodPost, "/api/slots/2025-03-10/initialize", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"created":true,"count":30}`, w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/slots/2025-03-10/initialize", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_initialized", decode[errorBody](t, w).Code)

	w = ts.do(t, http.MethodPost, "/api/slots/book", gin.H{"date": "2025-03-10", "period": "morning", "slotNumber": 4, "patientId": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	slot := decode[model.Slot](t, w)
	assert.Equal(t, 4, slot.SlotNumber)
	assert.Equal(t, model.SlotStatusBooked, slot.Status)
	assert.Equal(t, int64(4), slot.Machine.ID)

	w = ts.do(t, http.MethodGet, "/api/slots/2025-03-10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	grid := decode[booking.Grid](t, w)
	assert.Equal(t, 30, grid.TotalSlots)
	assert.Equal(t, 29, grid.AvailableSlots)
	assert.Equal(t, 1, grid.BookedSlots)

	w = ts.do(t, http.MethodPost, "/api/slots/book", gin.H{"date": "2025-03-10", "period": "morning", "slotNumber": 4, "patientId": 2})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "slot_already_booked", decode[errorBody](t, w).Code)

	w = ts.do(t, http.MethodPatch, "/api/slots/"+itoa(slot.ID)+"/toggle-disable", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[model.Slot](t, w).Disabled)

	w = ts.do(t, http.MethodPost, "/api/slots/book", gin.H{"date": "2025-03-10", "period": "morning", "slotNumber": 4, "patientId": 2})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "slot_disabled", decode[errorBody](t, w).Code)

	w = ts.do(t, http.MethodPost, "/api/slots/cancel", gin.H{"date": "2025-03-10", "patientId": 1})
	require.Equal(t, http.StatusOK, w.Code)
	released := decode[model.Slot](t, w)
	assert.Nil(t, released.PatientID)
	assert.True(t, released.Disabled, "cancel does not re-enable")

	w = ts.do(t, http.MethodPost, "/api/slots/cancel", gin.H{"date": "2025-03-10", "patientId": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "no_booking_found", decode[errorBody](t, w).Code)
}

func TestSlotsEndpoints_Validation(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/api/slots/10-03-2025", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_input", decode[errorBody](t, w).Code)

	w = ts.do(t, http.MethodPost, "/api/slots/book", gin.H{"date": "2025-03-10"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/slots/book", gin.H{"date": "2025-03-10", "period": "night", "slotNumber": 1, "patientId": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPatch, "/api/slots/abc/toggle-disable", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPatch, "/api/slots/999/toggle-disable", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMachinesEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/api/machines", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Machine](t, w), 15)

	w = ts.do(t, http.MethodGet, "/api/machines", nil)
	assert.Equal(t, "HIT", w.Header().Get(mw.CacheHeader))

	w = ts.do(t, http.MethodPost, "/api/machines", gin.H{"displayName": "Machine 16", "avgProcessingMinutes": 240})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Machine](t, w)
	assert.True(t, created.Active)

	w = ts.do(t, http.MethodGet, "/api/machines", nil)
	assert.Equal(t, "MISS", w.Header().Get(mw.CacheHeader), "writes flush the listing")
	assert.Len(t, decode[[]model.Machine](t, w), 16)

	w = ts.do(t, http.MethodPatch, "/api/machines/1", gin.H{"active": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[model.Machine](t, w).Active)

	w = ts.do(t, http.MethodPatch, "/api/machines/1", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPatch, "/api/machines/404", gin.H{"active": true})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPost, "/api/machines", gin.H{"displayName": "  ", "avgProcessingMinutes": 240})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInitializeSlots_InsufficientCapacity(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodPatch, "/api/machines/15", gin.H{"active": false})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/api/slots/2025-03-10/initialize", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "insufficient_capacity", decode[errorBody](t, w).Code)
}

func TestRescheduleEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)
	for _, date := range []string{"2025-03-10", "2025-03-12"} {
		w := ts.do(t, http.MethodPost, "/api/slots/"+date+"/initialize", nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := ts.do(t, http.MethodPost, "/api/reschedules", gin.H{"patientId": 1, "requestedDate": "2025-03-12", "originalDate": "2025-03-10"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	req := decode[model.RescheduleRequest](t, w)
	assert.Equal(t, model.RescheduleStatusPending, req.Status)

	w = ts.do(t, http.MethodPost, "/api/reschedules", gin.H{"patientId": 1, "requestedDate": "2025-03-14", "originalDate": "2025-03-10"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "pending_request_exists", decode[errorBody](t, w).Code)

	w = ts.do(t, http.MethodGet, "/api/reschedules?status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.RescheduleRequest](t, w), 1)

	w = ts.do(t, http.MethodPost, "/api/reschedules/"+itoa(req.ID)+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	approval := decode[reschedule.ApprovalResult](t, w)
	assert.Equal(t, model.RescheduleStatusApproved, approval.Request.Status)
	require.NotNil(t, approval.BookedSlot)
	assert.Equal(t, model.PeriodAfternoon, approval.BookedSlot.Period)
	assert.Equal(t, 1, approval.BookedSlot.SlotNumber)

	w = ts.do(t, http.MethodPost, "/api/reschedules/"+itoa(req.ID)+"/deny", gin.H{"reason": "late"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_processed", decode[errorBody](t, w).Code)

	w = ts.do(t, http.MethodPost, "/api/reschedules", gin.H{"patientId": 2, "requestedDate": "2025-03-12", "originalDate": "2025-03-10"})
	require.Equal(t, http.StatusCreated, w.Code)
	second := decode[model.RescheduleRequest](t, w)

	w = ts.do(t, http.MethodPost, "/api/reschedules/"+itoa(second.ID)+"/deny", gin.H{"reason": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/reschedules/"+itoa(second.ID)+"/deny", gin.H{"reason": "machine maintenance"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "machine maintenance", decode[reschedule.DenialResult](t, w).Request.AdminResponse)

	w = ts.do(t, http.MethodGet, "/api/patients/2/reschedules", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.RescheduleRequest](t, w), 1)

	w = ts.do(t, http.MethodPost, "/api/patients/2/reschedules/seen", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"updated":1}`, w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/reschedules/777/approve", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAttendanceEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodPost, "/api/slots/2025-03-10/initialize", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w = ts.do(t, http.MethodPost, "/api/slots/book", gin.H{"date": "2025-03-10", "period": "morning", "slotNumber": 1, "patientId": 1})
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodPost, "/api/slots/book", gin.H{"date": "2025-03-10", "period": "afternoon", "slotNumber": 1, "patientId": 2})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/api/attendance/radar", gin.H{"patientId": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	row := decode[model.Attendance](t, w)
	assert.Equal(t, model.AttendancePresent, row.Status)
	assert.Equal(t, "09:30:00", *row.Time)

	w = ts.do(t, http.MethodPost, "/api/attendance/radar", gin.H{"patientId": 2})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "outside_window", decode[errorBody](t, w).Code)

	w = ts.do(t, http.MethodPost, "/api/attendance/radar", gin.H{"patientId": 3})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "no_confirmed_appointment", decode[errorBody](t, w).Code)

	w = ts.do(t, http.MethodPost, "/api/attendance", gin.H{"patientId": 3, "date": "2025-03-10", "status": "absent"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[model.Attendance](t, w).Time)

	w = ts.do(t, http.MethodGet, "/api/attendance/2025-03-10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Attendance](t, w), 2)
}

func TestNextDateEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/api/patients/1/next-date?from=2025-03-11", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"patientId":1,"date":"2025-03-12"}`, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/patients/1/next-date", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"patientId":1,"date":"2025-03-10"}`, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/patients/404/next-date", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterPatientEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodPost, "/api/patients", gin.H{"name": "Ana Cruz", "schedule": "tts"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decode[model.Patient](t, w)
	assert.Equal(t, model.ScheduleTTS, p.Schedule)
	assert.Equal(t, model.PeriodMorning, p.PreferredPeriod)

	w = ts.do(t, http.MethodGet, "/api/patients/"+itoa(p.ID)+"/next-date?from=2025-03-10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-03-11", decode[map[string]any](t, w)["date"])

	w = ts.do(t, http.MethodPost, "/api/patients", gin.H{"name": "Ben", "schedule": "MTW"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/patients", gin.H{"schedule": "MWF"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/api/slots/2025-03-10", nil)
	assert.NotEmpty(t, w.Header().Get(mw.RequestIDHeader))
}

func TestVAPIDPublicKey(t *testing.T) {
	w := newTestServer(t, nil).do(t, http.MethodGet, "/api/vapid_public_key", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = newTestServer(t, &webpush.Options{VAPIDPublicKey: "pub"}).do(t, http.MethodGet, "/api/vapid_public_key", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"public_key":"pub"}`, w.Body.String())
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
