package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/TristanBrian/MamaCare/internal/config"
	"github.com/TristanBrian/MamaCare/internal/i18n"
	"github.com/TristanBrian/MamaCare/internal/middleware"
	"github.com/TristanBrian/MamaCare/internal/models"
	"github.com/TristanBrian/MamaCare/internal/repository/levelstore"
	"github.com/TristanBrian/MamaCare/internal/security"
	"github.com/TristanBrian/MamaCare/internal/service"
)

type testServer struct {
	router http.Handler
	auth   *service.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	set, err := levelstore.OpenMem()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { set.Close() })

	log := zerolog.Nop()
	cfg := &config.AppConfig{
		Environment: "test",
		Security: config.SecurityConfig{
			JWTAccessSecret: "test-secret",
			JWTAccessTTL:    15 * time.Minute,
			JWTRefreshTTL:   time.Hour,
			MaxSessions:     5,
		},
	}
	hasher := security.NewPasswordHasher(security.Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16})
	auth := service.NewAuthService(set.Users, set.Sessions, nil, hasher,
		security.NewTokenIssuer(cfg.Security.JWTAccessSecret, cfg.Security.JWTAccessTTL), cfg.Security, log)

	svc := Services{
		Auth:          auth,
		Appointments:  service.NewAppointmentService(set.Users, set.Appointments, log),
		Notifications: service.NewNotificationService(set.Notifications, log),
		Medications:   service.NewMedicationService(set.Users, set.Medications, time.UTC, log),
		Pregnancy:     service.NewPregnancyService(time.UTC),
		Avatars:       service.NewAvatarService(nil, auth, "secret", 1024, log),
	}
	h := NewHandlerSet(log, cfg, svc, middleware.NewRateLimiter(1000, 1000), nil,
		HealthCheck{Name: "store", Ping: set.Ping})

	r := gin.New()
	r.Use(middleware.LocaleSelector(i18n.English))
	h.Register(r.Group("/api"))
	return &testServer{router: r, auth: auth}
}

func (s *testServer) call(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, out
}

// signup registers through the API and returns the access token and user id.
func (s *testServer) signup(t *testing.T, email, name string, role models.UserRole) (string, string) {
	t.Helper()
	code, body := s.call(t, "POST", "/api/users", "", map[string]any{
		"email": email, "password": "password123", "fullName": name, "role": string(role),
	})
	if code != http.StatusCreated {
		t.Fatalf("register %s: %d %v", email, code, body)
	}
	user := body["user"].(map[string]any)
	return body["accessToken"].(string), user["id"].(string)
}

func TestJaneScenario(t *testing.T) {
	s := newTestServer(t)

	_, janeID := s.signup(t, "jane@x.com", "Jane", models.UserRolePatient)
	s.signup(t, "doc@x.com", "Dr. Achieng", models.UserRoleDoctor)

	code, body := s.call(t, "POST", "/api/sessions", "", map[string]any{"email": "doc@x.com", "password": "password123"})
	if code != http.StatusOK {
		t.Fatalf("doctor login: %d %v", code, body)
	}
	docToken := body["accessToken"].(string)
	docID := body["user"].(map[string]any)["id"].(string)

	code, body = s.call(t, "POST", "/api/appointments", docToken, map[string]any{
		"date": "2024-03-01", "time": "09:00", "purpose": "Checkup", "patientId": janeID,
	})
	if code != http.StatusCreated {
		t.Fatalf("schedule: %d %v", code, body)
	}
	appt := body["appointment"].(map[string]any)
	if appt["doctorId"] != docID {
		t.Fatalf("doctorId = %v", appt["doctorId"])
	}

	code, body = s.call(t, "POST", "/api/sessions", "", map[string]any{"email": "jane@x.com", "password": "password123"})
	if code != http.StatusOK {
		t.Fatalf("jane login: %d", code)
	}
	janeToken := body["accessToken"].(string)

	code, body = s.call(t, "GET", "/api/notifications", janeToken, nil)
	if code != http.StatusOK {
		t.Fatalf("notifications: %d", code)
	}
	items := body["items"].([]any)
	if len(items) != 1 || body["unread"].(float64) != 1 {
		t.Fatalf("notifications = %v", body)
	}
	n := items[0].(map[string]any)
	if n["read"] != false || n["appointment"].(map[string]any)["id"] != appt["id"] {
		t.Fatalf("notification = %v", n)
	}

	code, _ = s.call(t, "PATCH", "/api/notifications/"+n["id"].(string), docToken, nil)
	if code != http.StatusForbidden {
		t.Fatalf("doctor marking jane's notification: %d", code)
	}
	code, _ = s.call(t, "PATCH", "/api/notifications/"+n["id"].(string), janeToken, map[string]any{"read": false})
	if code != http.StatusBadRequest {
		t.Fatalf("mark unread: %d", code)
	}
	code, _ = s.call(t, "POST", "/api/notifications/read-all", janeToken, nil)
	if code != http.StatusOK {
		t.Fatalf("read-all: %d", code)
	}
	_, body = s.call(t, "GET", "/api/notifications", janeToken, nil)
	if body["unread"].(float64) != 0 {
		t.Fatalf("unread after read-all: %v", body["unread"])
	}
}

func TestRoleEnforcement(t *testing.T) {
	s := newTestServer(t)
	janeToken, janeID := s.signup(t, "jane@x.com", "Jane", models.UserRolePatient)

	code, body := s.call(t, "POST", "/api/appointments", janeToken, map[string]any{
		"date": "2024-03-01", "time": "09:00", "purpose": "Checkup", "patientId": janeID,
	})
	if code != http.StatusForbidden || body["redirect"] != "/" {
		t.Fatalf("patient scheduling: %d %v", code, body)
	}

	if code, _ := s.call(t, "GET", "/api/users", janeToken, nil); code != http.StatusForbidden {
		t.Fatalf("patient listing users: %d", code)
	}
	if code, _ := s.call(t, "GET", "/api/appointments", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("anonymous listing: %d", code)
	}

	code, body = s.call(t, "POST", "/api/users", "", map[string]any{
		"email": "root@x.com", "password": "password123", "fullName": "Root", "role": "admin",
	})
	if code != http.StatusForbidden {
		t.Fatalf("anonymous admin signup: %d %v", code, body)
	}
}

func TestLoginFailures(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "jane@x.com", "Jane", models.UserRolePatient)

	code, body := s.call(t, "POST", "/api/sessions", "", map[string]any{"email": "jane@x.com", "password": "nope"})
	if code != http.StatusUnauthorized || body["error"] != "invalid_credentials" {
		t.Fatalf("wrong password: %d %v", code, body)
	}
	if _, ok := body["user"]; ok {
		t.Fatal("failed login returned a user")
	}

	code, body = s.call(t, "POST", "/api/users", "", map[string]any{
		"email": "JANE@x.com", "password": "password123", "fullName": "Jane 2", "role": "patient",
	})
	if code != http.StatusConflict {
		t.Fatalf("duplicate signup: %d %v", code, body)
	}

	code, body = s.call(t, "POST", "/api/users", "", map[string]any{
		"email": "x@x.com", "password": "pw", "fullName": "X", "role": "patient",
	})
	if code != http.StatusBadRequest || body["field"] != "password" {
		t.Fatalf("short password: %d %v", code, body)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signup(t, "jane@x.com", "Jane", models.UserRolePatient)

	if code, _ := s.call(t, "GET", "/api/users/me", token, nil); code != http.StatusOK {
		t.Fatalf("me: %d", code)
	}
	if code, _ := s.call(t, "DELETE", "/api/sessions", token, nil); code != http.StatusNoContent {
		t.Fatalf("logout: %d", code)
	}
	if code, _ := s.call(t, "GET", "/api/users/me", token, nil); code != http.StatusUnauthorized {
		t.Fatalf("me after logout: %d", code)
	}
}

func TestMedicationToggleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signup(t, "jane@x.com", "Jane", models.UserRolePatient)

	code, body := s.call(t, "POST", "/api/medications", token, map[string]any{
		"name": "Folic acid", "dosage": "400mcg", "frequency": "twice_daily",
		"startDate": "2024-03-01", "time": []string{"08:00", "20:00"},
	})
	if code != http.StatusCreated {
		t.Fatalf("add: %d %v", code, body)
	}
	id := body["medication"].(map[string]any)["id"].(string)

	_, list := s.call(t, "GET", "/api/medications", token, nil)
	today := list["today"].(string)

	for _, want := range []bool{true, false} {
		code, body = s.call(t, "POST", "/api/medications/"+id+"/toggle", token, nil)
		if code != http.StatusOK {
			t.Fatalf("toggle: %d %v", code, body)
		}
		taken := body["medication"].(map[string]any)["taken"].(map[string]any)
		if taken[today] != want {
			t.Fatalf("taken[%s] = %v, want %v", today, taken[today], want)
		}
	}

	code, body = s.call(t, "POST", "/api/medications", token, map[string]any{
		"name": "Iron", "dosage": "1", "frequency": "daily", "startDate": "2024-03-01", "time": []string{},
	})
	if code != http.StatusBadRequest || body["field"] != "time" {
		t.Fatalf("no slots: %d %v", code, body)
	}
}

func TestPublicEndpoints(t *testing.T) {
	s := newTestServer(t)

	code, body := s.call(t, "GET", "/api/healthz", "", nil)
	if code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health: %d %v", code, body)
	}

	code, body = s.call(t, "POST", "/api/assistant", "", map[string]any{"query": "who are you"})
	if code != http.StatusOK || body["response"] == "" {
		t.Fatalf("assistant: %d %v", code, body)
	}

	code, body = s.call(t, "POST", "/api/access/check", "", map[string]any{"requiredRoles": []string{"doctor"}})
	if code != http.StatusOK {
		t.Fatalf("access check: %d %v", code, body)
	}
	decision := body["decision"].(map[string]any)
	if body["state"] != "anonymous" || decision["outcome"] != "deny_login" || decision["redirect"] != "/login" {
		t.Fatalf("anonymous access check: %v", body)
	}
}

func TestAvatarUploadDisabled(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signup(t, "jane@x.com", "Jane", models.UserRolePatient)

	var buf bytes.Buffer
	buf.WriteString("--b\r\nContent-Disposition: form-data; name=\"file\"; filename=\"a.png\"\r\nContent-Type: image/png\r\n\r\n\x89PNG\r\n\x1a\n\r\n--b--\r\n")
	req := httptest.NewRequest("PUT", "/api/users/me/avatar", &buf)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=b")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
}

func TestPregnancyProgressOverHTTP(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signup(t, "jane@x.com", "Jane", models.UserRolePatient)

	due := time.Now().UTC().AddDate(0, 0, 30).Format(models.DateLayout)
	code, body := s.call(t, "GET", "/api/pregnancy/progress?lang=sw&dueDate="+due, token, nil)
	if code != http.StatusOK {
		t.Fatalf("progress: %d %v", code, body)
	}
	if body["trimester"].(float64) != 3 || body["trimesterLabel"] != "Trimesta ya 3" {
		t.Fatalf("progress = %v", body)
	}

	code, _ = s.call(t, "GET", "/api/pregnancy/progress", token, nil)
	if code != http.StatusBadRequest {
		t.Fatalf("missing due date: %d", code)
	}
}

func TestOnlyDoctorsAndHospitalsSchedule(t *testing.T) {
	s := newTestServer(t)
	_, janeID := s.signup(t, "jane@x.com", "Jane", models.UserRolePatient)
	hospitalToken, _ := s.signup(t, "h@x.com", "General", models.UserRoleHospital)

	if _, _, err := s.auth.EnsureAccount(context.Background(), service.BootstrapAccount{
		Email: "root@x.com", Password: "password123", FullName: "Root", Role: models.UserRoleAdmin,
	}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	code, body := s.call(t, "POST", "/api/sessions", "", map[string]any{"email": "root@x.com", "password": "password123"})
	if code != http.StatusOK {
		t.Fatalf("admin login: %d %v", code, body)
	}
	adminToken := body["accessToken"].(string)

	appt := map[string]any{"date": "2024-03-01", "time": "09:00", "purpose": "Checkup", "patientId": janeID}

	if code, body := s.call(t, "POST", "/api/appointments", adminToken, appt); code != http.StatusForbidden {
		t.Fatalf("admin scheduling: %d %v", code, body)
	}
	if code, body := s.call(t, "POST", "/api/appointments", hospitalToken, appt); code != http.StatusCreated {
		t.Fatalf("hospital scheduling: %d %v", code, body)
	}
}

func TestAccessCheckRejectsUnknownRole(t *testing.T) {
	s := newTestServer(t)

	code, body := s.call(t, "POST", "/api/access/check", "", map[string]any{"requiredRoles": []string{"doctor", "nurse"}})
	if code != http.StatusBadRequest || body["field"] != "requiredRoles[1]" {
		t.Fatalf("unknown role: %d %v", code, body)
	}
}
