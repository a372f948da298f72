package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"maintenance-tracker-backend/config"
	"maintenance-tracker-backend/internal/db"
	"maintenance-tracker-backend/internal/maintenance"
	"maintenance-tracker-backend/internal/model"
	"maintenance-tracker-backend/internal/store"
)

var fixedNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.Local)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router http.Handler
	store  store.Store
	svc    *maintenance.Service
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithPush(t, nil)
}

func newTestEnvWithPush(t *testing.T, webpushOptions *webpush.Options) *testEnv {
	t.Helper()
	gormDB, err := db.Init(&config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})

	s := store.NewGormStore(gormDB)
	svc := maintenance.NewService(s, zap.NewNop(), maintenance.WithClock(func() time.Time { return fixedNow }))
	router := NewRouter(svc, s, webpushOptions, &config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000}, zap.NewNop())
	return &testEnv{router: router, store: s, svc: svc}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) createMachine(t *testing.T, name string) int64 {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/machines",
		`{"name":"`+name+`","location":"Plant 1","status":"Running","maintenanceFrequencyDays":30}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var m model.Machine
	decode(t, w, &m)
	return m.ID
}

func (e *testEnv) schedule(t *testing.T, machineID int64, day model.Date) int64 {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/maintenance",
		`{"machineId":`+itoa(machineID)+`,"scheduledDate":"`+day.String()+`"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var r model.MaintenanceRecord
	decode(t, w, &r)
	return r.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func today() model.Date { return model.DateOf(fixedNow) }

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestMachineEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/machines", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/machines",
		`{"name":"Packaging Line","location":"Plant 2","maintenanceFrequencyDays":7,"imageUrl":"https://img.example.com/p.png"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]any
	decode(t, w, &created)
	assert.Equal(t, "Running", created["status"])
	assert.Equal(t, today().AddDays(7).String(), created["nextDueDate"])
	assert.Nil(t, created["lastMaintenanceDate"])
	id := int64(created["id"].(float64))

	w = env.do(t, http.MethodGet, "/api/machines/"+itoa(id), "")
	require.Equal(t, http.StatusOK, w.Code)
	var detail map[string]any
	decode(t, w, &detail)
	assert.Equal(t, float64(100), detail["healthScore"])
	assert.Equal(t, "Packaging Line", detail["name"])

	w = env.do(t, http.MethodPut, "/api/machines/"+itoa(id), `{"status":"Maintenance","maintenanceFrequencyDays":14}`)
	require.Equal(t, http.StatusOK, w.Code)
	var updated map[string]any
	decode(t, w, &updated)
	assert.Equal(t, "Maintenance", updated["status"])
	assert.Equal(t, today().AddDays(14).String(), updated["nextDueDate"])

	env.createMachine(t, "Boiler")
	w = env.do(t, http.MethodGet, "/api/machines?status=maintenance", "")
	require.Equal(t, http.StatusOK, w.Code)
	var inMaintenance []model.Machine
	decode(t, w, &inMaintenance)
	require.Len(t, inMaintenance, 1)
	assert.Equal(t, id, inMaintenance[0].ID)

	w = env.do(t, http.MethodGet, "/api/machines", "")
	var all []model.Machine
	decode(t, w, &all)
	assert.Len(t, all, 2)

	w = env.do(t, http.MethodDelete, "/api/machines/"+itoa(id), "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/machines/"+itoa(id), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Machine not found"}`, w.Body.String())

	w = env.do(t, http.MethodDelete, "/api/machines/"+itoa(id), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMachineValidation(t *testing.T) {
	env := newTestEnv(t)
	id := env.createMachine(t, "Lathe")

	testCases := []struct {
		name   string
		method string
		path   string
		body   string
		field  string
	}{
		{name: "missing name", method: http.MethodPost, path: "/api/machines", body: `{"location":"x","maintenanceFrequencyDays":3}`, field: "name"},
		{name: "zero frequency", method: http.MethodPost, path: "/api/machines", body: `{"name":"x","location":"x","maintenanceFrequencyDays":0}`, field: "maintenanceFrequencyDays"},
		{name: "negative frequency", method: http.MethodPost, path: "/api/machines", body: `{"name":"x","location":"x","maintenanceFrequencyDays":-1}`, field: "maintenanceFrequencyDays"},
		{name: "frequency beyond a century", method: http.MethodPost, path: "/api/machines", body: `{"name":"x","location":"x","maintenanceFrequencyDays":3000000}`, field: "maintenanceFrequencyDays"},
		{name: "frequency as text", method: http.MethodPost, path: "/api/machines", body: `{"name":"x","location":"x","maintenanceFrequencyDays":"often"}`, field: "maintenanceFrequencyDays"},
		{name: "bad status", method: http.MethodPost, path: "/api/machines", body: `{"name":"x","location":"x","maintenanceFrequencyDays":3,"status":"Broken"}`, field: "status"},
		{name: "bad date", method: http.MethodPost, path: "/api/machines", body: `{"name":"x","location":"x","maintenanceFrequencyDays":3,"nextDueDate":"next week"}`, field: "nextDueDate"},
		{name: "patch next due date", method: http.MethodPut, path: "/api/machines/" + itoa(id), body: `{"nextDueDate":"2030-01-01"}`, field: "nextDueDate"},
		{name: "patch empty name", method: http.MethodPut, path: "/api/machines/" + itoa(id), body: `{"name":"  "}`, field: "name"},
		{name: "patch zero frequency", method: http.MethodPut, path: "/api/machines/" + itoa(id), body: `{"maintenanceFrequencyDays":0}`, field: "maintenanceFrequencyDays"},
		{name: "patch frequency beyond a century", method: http.MethodPut, path: "/api/machines/" + itoa(id), body: `{"maintenanceFrequencyDays":3000000}`, field: "maintenanceFrequencyDays"},
		{name: "bad id", method: http.MethodGet, path: "/api/machines/abc", field: "id"},
		{name: "bad status filter", method: http.MethodGet, path: "/api/machines?status=Broken", field: "status"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, tc.method, tc.path, tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			var resp errorResponse
			decode(t, w, &resp)
			assert.Equal(t, tc.field, resp.Field)
			assert.NotEmpty(t, resp.Message)
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/machines", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"message":"request body must be valid JSON"}`, w.Body.String())
	})

	t.Run("update unknown machine", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/machines/9999", `{"location":"x"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestMaintenanceLifecycle(t *testing.T) {
	env := newTestEnv(t)
	machineID := env.createMachine(t, "Boiler")

	w := env.do(t, http.MethodPut, "/api/machines/"+itoa(machineID), `{"status":"Maintenance"}`)
	require.Equal(t, http.StatusOK, w.Code)

	recordID := env.schedule(t, machineID, today().AddDays(-3))

	w = env.do(t, http.MethodGet, "/api/maintenance/"+itoa(recordID), "")
	require.Equal(t, http.StatusOK, w.Code)
	var view map[string]any
	decode(t, w, &view)
	assert.Equal(t, "Boiler", view["machineName"])
	assert.Equal(t, "Overdue", view["classification"])
	assert.Equal(t, "Pending", view["status"])

	w = env.do(t, http.MethodPost, "/api/maintenance/"+itoa(recordID)+"/complete", `{"technicianName":"Sam","remarks":"Descaled"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var done map[string]any
	decode(t, w, &done)
	assert.Equal(t, "Completed", done["status"])
	assert.Equal(t, today().String(), done["completedDate"])
	assert.Equal(t, "Sam", done["technicianName"])
	assert.Equal(t, "Descaled", done["remarks"])

	w = env.do(t, http.MethodGet, "/api/machines/"+itoa(machineID), "")
	require.Equal(t, http.StatusOK, w.Code)
	var machine map[string]any
	decode(t, w, &machine)
	assert.Equal(t, "Running", machine["status"])
	assert.Equal(t, today().String(), machine["lastMaintenanceDate"])
	assert.Equal(t, today().AddDays(30).String(), machine["nextDueDate"])
	assert.Equal(t, float64(100), machine["healthScore"])

	w = env.do(t, http.MethodPost, "/api/maintenance/"+itoa(recordID)+"/complete", `{"technicianName":"Sam"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/machines/"+itoa(machineID)+"/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	var history []map[string]any
	decode(t, w, &history)
	require.Len(t, history, 1)
	assert.Equal(t, float64(recordID), history[0]["id"])
}

func TestMaintenanceErrors(t *testing.T) {
	env := newTestEnv(t)
	machineID := env.createMachine(t, "Saw")

	w := env.do(t, http.MethodPost, "/api/maintenance", `{"machineId":9999,"scheduledDate":"2026-10-20"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Machine not found"}`, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/maintenance", `{"machineId":`+itoa(machineID)+`}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"scheduledDate"`)

	w = env.do(t, http.MethodPost, "/api/maintenance", `{"machineId":`+itoa(machineID)+`,"scheduledDate":"20/10/2026"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/maintenance/9999/complete", `{"technicianName":"Sam"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Maintenance task not found"}`, w.Body.String())

	recordID := env.schedule(t, machineID, today())
	w = env.do(t, http.MethodPost, "/api/maintenance/"+itoa(recordID)+"/complete", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"technicianName"`)

	w = env.do(t, http.MethodGet, "/api/maintenance/9999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/maintenance?range=someday", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"range"`)
}

// seedReferenceFixture builds five machines (one under maintenance) and the
// four reference records. It returns the record ids in fixture order.
func seedReferenceFixture(t *testing.T, env *testEnv) (machines []int64, records []int64) {
	t.Helper()
	for _, name := range []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"} {
		machines = append(machines, env.createMachine(t, name))
	}
	w := env.do(t, http.MethodPut, "/api/machines/"+itoa(machines[1]), `{"status":"Maintenance"}`)
	require.Equal(t, http.StatusOK, w.Code)

	records = append(records,
		env.schedule(t, machines[0], today().AddDays(-1)),
		env.schedule(t, machines[1], today().AddDays(3)),
		env.schedule(t, machines[0], today().AddDays(10)),
		env.schedule(t, machines[1], today().AddDays(-1)),
	)
	w = env.do(t, http.MethodPost, "/api/maintenance/"+itoa(records[3])+"/complete", `{"technicianName":"Sam"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// Completion put Bravo back to Running; restore the maintenance status.
	w = env.do(t, http.MethodPut, "/api/machines/"+itoa(machines[1]), `{"status":"Maintenance"}`)
	require.Equal(t, http.StatusOK, w.Code)
	return machines, records
}

func listIDs(t *testing.T, env *testEnv, path string) []int64 {
	t.Helper()
	w := env.do(t, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rows []struct {
		ID          int64  `json:"id"`
		MachineName string `json:"machineName"`
	}
	decode(t, w, &rows)
	ids := make([]int64, len(rows))
	for i, r := range rows {
		assert.NotEmpty(t, r.MachineName)
		ids[i] = r.ID
	}
	return ids
}

func TestMaintenanceListing(t *testing.T) {
	env := newTestEnv(t)
	machines, records := seedReferenceFixture(t, env)

	assert.Equal(t, []int64{records[0]}, listIDs(t, env, "/api/maintenance?range=overdue"))
	assert.Equal(t, []int64{records[0]}, listIDs(t, env, "/api/maintenance?status=Overdue"))
	assert.Equal(t, []int64{records[1]}, listIDs(t, env, "/api/maintenance?range=upcoming"))
	assert.Equal(t, []int64{records[3]}, listIDs(t, env, "/api/maintenance?status=Completed"))
	assert.Equal(t, []int64{records[2], records[1], records[3], records[0]}, listIDs(t, env, "/api/maintenance"))
	assert.Equal(t, []int64{records[2], records[0]}, listIDs(t, env, "/api/maintenance?machineId="+itoa(machines[0])))
	assert.Empty(t, listIDs(t, env, "/api/maintenance?range=upcoming&machineId="+itoa(machines[0])))
}

func TestDashboardStats(t *testing.T) {
	env := newTestEnv(t)
	seedReferenceFixture(t, env)

	w := env.do(t, http.MethodGet, "/api/stats/dashboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalMachines":5,"machinesInMaintenance":1,"overdueTasks":1,"upcomingTasks":1}`, w.Body.String())
}

func TestExports(t *testing.T) {
	env := newTestEnv(t)
	seedReferenceFixture(t, env)

	w := env.do(t, http.MethodGet, "/api/maintenance/export?status=Completed", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "maintenance_2026-10-16.xlsx")
	assert.True(t, strings.HasPrefix(w.Body.String(), "PK"))

	w = env.do(t, http.MethodGet, "/api/maintenance/calendar.ics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, icsContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, 3, strings.Count(w.Body.String(), "BEGIN:VEVENT"))

	w = env.do(t, http.MethodGet, "/api/maintenance/calendar.ics?machineId=x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
