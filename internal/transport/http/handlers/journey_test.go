package handlers_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"vulcanhr/internal/app/server"
	"vulcanhr/internal/broadcast"
	"vulcanhr/internal/domain/employee"
	"vulcanhr/internal/domain/evaluation"
	"vulcanhr/internal/localstore"
	"vulcanhr/internal/platform/config"
	"vulcanhr/internal/vulcandb"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   any             `json:"error"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	local, err := localstore.Open(filepath.Join(t.TempDir(), "vulcan.db"))
	if err != nil {
		t.Fatalf("open local store: %v", err)
	}
	t.Cleanup(func() { _ = local.Close() })

	hub := broadcast.NewHub()
	t.Cleanup(hub.Close)

	data := vulcandb.New(local, nil, hub, 200*time.Millisecond)
	if err := data.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	cfg := config.Config{
		JWTSecret:    "test-secret",
		TokenTTL:     time.Hour,
		MaxBodyBytes: 1 << 20,
		FrontendDir:  t.TempDir(),
	}
	srv := httptest.NewServer(server.NewRouter(cfg, data, hub))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, env
}

func login(t *testing.T, base, username, password string) string {
	t.Helper()

	resp, env := doJSON(t, http.MethodPost, base+"/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d, error %v", username, resp.StatusCode, env.Error)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode login data: %v", err)
	}
	return out.Token
}

func TestEvaluationAndBonusJourney(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL

	// First login adopts the presented password; reuse with a wrong one
	// must fail afterwards.
	gerente := login(t, base, "Carlos Mendoza", "clave-segura")
	resp, _ := doJSON(t, http.MethodPost, base+"/api/v1/auth/login", "", map[string]string{
		"username": "Carlos Mendoza",
		"password": "otra-clave",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password accepted, status %d", resp.StatusCode)
	}

	roster := []employee.Employee{
		{ID: "e1", IDNumber: "100", Name: "Pedro Quintana", Department: employee.DepartmentProduccion, ManagerName: "Jorge Ramirez"},
		{ID: "e2", IDNumber: "101", Name: "Luisa Paredes", Department: employee.DepartmentCalidad, ManagerName: "Lucia Herrera"},
	}
	resp, env := doJSON(t, http.MethodPut, base+"/api/v1/employees/", gerente, roster)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save employees: status %d, error %v", resp.StatusCode, env.Error)
	}

	// Supervisors see only their own reports.
	supervisor := login(t, base, "Jorge Ramirez", "clave-jorge")
	resp, env = doJSON(t, http.MethodGet, base+"/api/v1/employees/", supervisor, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list employees: status %d", resp.StatusCode)
	}
	var visible []employee.Employee
	if err := json.Unmarshal(env.Data, &visible); err != nil {
		t.Fatalf("decode employees: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != "e1" {
		t.Fatalf("supervisor visibility wrong: %+v", visible)
	}

	// A qualifying evaluation lands in PendingAuth.
	submit := evaluation.FullEvaluation{
		EmployeeID: "e1",
		Month:      "marzo",
		Year:       "2026",
		Criteria: []evaluation.Criterion{
			{Name: "Seguridad", Score: 5},
			{Name: "Productividad", Score: 4},
			{Name: "Calidad", Score: 4},
		},
	}
	resp, env = doJSON(t, http.MethodPost, base+"/api/v1/evaluations/", supervisor, submit)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit evaluation: status %d, error %v", resp.StatusCode, env.Error)
	}
	var created evaluation.FullEvaluation
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode evaluation: %v", err)
	}
	if created.BonusCondition != evaluation.BonusPendingAuth {
		t.Fatalf("expected PendingAuth, got %q", created.BonusCondition)
	}
	if created.TotalPoints != 13 {
		t.Fatalf("expected 13 points, got %d", created.TotalPoints)
	}

	// Supervisors cannot resolve the bonus.
	bonusURL := fmt.Sprintf("%s/api/v1/evaluations/%s/bonus", base, created.ID)
	resp, _ = doJSON(t, http.MethodPost, bonusURL, supervisor, map[string]string{"decision": evaluation.BonusApproved})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("supervisor resolved bonus, status %d", resp.StatusCode)
	}

	resp, env = doJSON(t, http.MethodPost, bonusURL, gerente, map[string]string{"decision": evaluation.BonusApproved})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve bonus: status %d, error %v", resp.StatusCode, env.Error)
	}

	// Resolving twice is a conflict.
	resp, _ = doJSON(t, http.MethodPost, bonusURL, gerente, map[string]string{"decision": evaluation.BonusApproved})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("double resolve accepted, status %d", resp.StatusCode)
	}

	// The approval left a notification on the employee.
	resp, env = doJSON(t, http.MethodGet, base+"/api/v1/employees/", gerente, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list employees: status %d", resp.StatusCode)
	}
	var all []employee.Employee
	if err := json.Unmarshal(env.Data, &all); err != nil {
		t.Fatalf("decode employees: %v", err)
	}
	found := false
	for _, e := range all {
		if e.ID != "e1" {
			continue
		}
		found = true
		if len(e.Notifications) != 1 || e.Notifications[0].Read {
			t.Fatalf("expected one unread notification, got %+v", e.Notifications)
		}
		if e.LastEvaluation != "marzo 2026" {
			t.Fatalf("lastEvaluation not stamped: %q", e.LastEvaluation)
		}
	}
	if !found {
		t.Fatal("employee e1 missing from listing")
	}
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	srv := newTestServer(t)

	resp, env := doJSON(t, http.MethodGet, srv.URL+"/api/v1/employees/", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (%v)", resp.StatusCode, env.Error)
	}
}

func TestBackupRoundTripOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL
	token := login(t, base, "Ana Torres", "clave-ana")

	roster := []employee.Employee{
		{ID: "e1", IDNumber: "100", Name: "Pedro Quintana", Department: employee.DepartmentProduccion, ManagerName: "Jorge Ramirez"},
	}
	resp, _ := doJSON(t, http.MethodPut, base+"/api/v1/employees/", token, roster)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save employees: status %d", resp.StatusCode)
	}

	resp, env := doJSON(t, http.MethodGet, base+"/api/v1/sync/backup", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export backup: status %d", resp.StatusCode)
	}
	var backup struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(env.Data, &backup); err != nil {
		t.Fatalf("decode backup: %v", err)
	}
	if backup.Code == "" {
		t.Fatal("empty backup code")
	}

	// Wipe and restore.
	resp, _ = doJSON(t, http.MethodPut, base+"/api/v1/employees/", token, []employee.Employee{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("clear employees: status %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPost, base+"/api/v1/sync/backup", token, map[string]string{"code": backup.Code})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import backup: status %d", resp.StatusCode)
	}

	resp, env = doJSON(t, http.MethodGet, base+"/api/v1/employees/", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list employees: status %d", resp.StatusCode)
	}
	var restored []employee.Employee
	if err := json.Unmarshal(env.Data, &restored); err != nil {
		t.Fatalf("decode employees: %v", err)
	}
	if len(restored) != 1 || restored[0].Name != "Pedro Quintana" {
		t.Fatalf("restore wrong: %+v", restored)
	}

	// Garbage codes change nothing.
	resp, _ = doJSON(t, http.MethodPost, base+"/api/v1/sync/backup", token, map[string]string{"code": "no-es-base64"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("garbage backup accepted, status %d", resp.StatusCode)
	}
}

func TestEventStreamDeliversChanges(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL
	token := login(t, base, "Carlos Mendoza", "clave-segura")

	req, err := http.NewRequest(http.MethodGet, base+"/api/v1/sync/events", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stream: status %d", resp.StatusCode)
	}

	lines := make(chan string, 8)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	roster := []employee.Employee{
		{ID: "e1", IDNumber: "100", Name: "Pedro Quintana", Department: employee.DepartmentProduccion, ManagerName: "Jorge Ramirez"},
	}
	saveResp, _ := doJSON(t, http.MethodPut, base+"/api/v1/employees/", token, roster)
	if saveResp.StatusCode != http.StatusOK {
		t.Fatalf("save employees: status %d", saveResp.StatusCode)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case line, open := <-lines:
			if !open {
				t.Fatal("stream closed before the employees event arrived")
			}
			if line == "event: "+broadcast.EventEmployees {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for the employees event")
		}
	}
}

func TestBulkImportOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL
	token := login(t, base, "Ana Torres", "clave-ana")

	csv := "idNumber,name,role,department,managerName\n" +
		"100,Pedro Quintana,soldador,produccion,Jorge Ramirez\n" +
		"101,,inspector,calidad,Lucia Herrera\n"
	req, err := http.NewRequest(http.MethodPost, base+"/api/v1/employees/import", bytes.NewReader([]byte(csv)))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import: status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	var result struct {
		Imported int `json:"imported"`
		Issues   []struct {
			Line int `json:"line"`
		} `json:"issues"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Imported != 1 || len(result.Issues) != 1 || result.Issues[0].Line != 3 {
		t.Fatalf("unexpected import result: %+v", result)
	}
}
