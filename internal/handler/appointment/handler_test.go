package appointment_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appointmentHandler "github.com/ccsfp/clinic-api/internal/handler/appointment"
	"github.com/ccsfp/clinic-api/internal/service/scheduling"
	"github.com/ccsfp/clinic-api/internal/store/memory"
	"github.com/ccsfp/clinic-api/pkg/lock"
)

type response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := scheduling.NewService(memory.NewStore(), lock.NewKeyedMutex())
	h := appointmentHandler.NewHandler(svc)

	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)
	h.RegisterStaffRoutes(api)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func booking(studentID, nurse, dateTime string) map[string]interface{} {
	return map[string]interface{}{
		"studentId": studentID,
		"lastName":  "Doe",
		"firstName": "Jane",
		"email":     "jane@example.edu",
		"concern":   "Headache",
		"nurse":     nurse,
		"dateTime":  dateTime,
	}
}

func TestCreateAppointment(t *testing.T) {
	r := newTestRouter()

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/appointments",
		booking("S001", "Nurse Cruz", "2026-09-01T10:00"))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "Appointment created successfully.", resp.Message)

	var data struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.NotEmpty(t, data.ID)
}

func TestCreateAppointmentMissingFields(t *testing.T) {
	r := newTestRouter()

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/appointments",
		map[string]interface{}{"studentId": "S001"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", resp.Status)
}

func TestCreateAppointmentConflicts(t *testing.T) {
	r := newTestRouter()

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/appointments",
		booking("S001", "Nurse Cruz", "2026-09-01T10:00"))
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/appointments",
		booking("S002", "Nurse Cruz", "2026-09-01T10:00"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Time slot already booked for this nurse.", resp.Message)

	w, resp = doJSON(t, r, http.MethodPost, "/api/v1/appointments",
		booking("S001", "Nurse Reyes", "2026-09-01T15:00"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Student already has an appointment on this date.", resp.Message)
}

func TestAcceptAndListAppointments(t *testing.T) {
	r := newTestRouter()

	_, created := doJSON(t, r, http.MethodPost, "/api/v1/appointments",
		booking("S001", "Nurse Cruz", "2026-09-01T10:00"))
	var data struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(created.Data, &data))

	w, resp := doJSON(t, r, http.MethodPatch, "/api/v1/appointments/"+data.ID+"/accept", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Appointment accepted successfully", resp.Message)

	w, resp = doJSON(t, r, http.MethodGet, "/api/v1/appointments", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var appointments []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &appointments))
	require.Len(t, appointments, 1)
	assert.Equal(t, "Accepted", appointments[0]["status"])
}

func TestAcceptErrors(t *testing.T) {
	r := newTestRouter()

	w, resp := doJSON(t, r, http.MethodPatch, "/api/v1/appointments/not-a-uuid/accept", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid appointment ID", resp.Message)

	w, resp = doJSON(t, r, http.MethodPatch,
		"/api/v1/appointments/00000000-0000-0000-0000-000000000001/accept", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Appointment not found", resp.Message)
}

func TestDeleteAppointment(t *testing.T) {
	r := newTestRouter()

	_, created := doJSON(t, r, http.MethodPost, "/api/v1/appointments",
		booking("S001", "Nurse Cruz", "2026-09-01T10:00"))
	var data struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(created.Data, &data))

	w, resp := doJSON(t, r, http.MethodDelete, "/api/v1/appointments/"+data.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Appointment deleted successfully", resp.Message)

	w, _ = doJSON(t, r, http.MethodDelete, "/api/v1/appointments/"+data.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
