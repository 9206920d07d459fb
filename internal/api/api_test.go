package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lifexp-app/lifexp/internal/app/engagement"
	"github.com/lifexp-app/lifexp/internal/domain"
	"github.com/lifexp-app/lifexp/internal/health"
	"github.com/lifexp-app/lifexp/internal/infra/sqlite"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	store, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("Open db: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	srv := NewServer(engagement.New(store, engagement.Options{}), nil)
	hc := health.NewChecker(store, dir, 0, nil)
	hc.RunOnce(context.Background())
	srv.SetHealth(hc)
	return srv
}

// do sends a request through the router and returns the recorder.
func do(t *testing.T, srv *Server, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, rd)
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, want, w.Body.String())
	}
}

func createUser(t *testing.T, srv *Server) string {
	t.Helper()
	w := do(t, srv, "POST", "/api/v1/users", "", map[string]string{"name": "Tester"})
	expectStatus(t, w, http.StatusCreated)
	var u domain.User
	decode(t, w, &u)
	return u.ID
}

// ─── Health & Version ───────────────────────────────────────────────────────

func TestAPI_Health(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, "GET", "/health", "", nil)
	expectStatus(t, w, http.StatusOK)

	var body struct {
		Status string          `json:"status"`
		Checks []health.Status `json:"checks"`
	}
	decode(t, w, &body)
	if body.Status != "ok" || len(body.Checks) != 2 {
		t.Errorf("unexpected health body: %+v", body)
	}
}

func TestAPI_Version(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, "GET", "/api/version", "", nil)
	expectStatus(t, w, http.StatusOK)

	var body map[string]string
	decode(t, w, &body)
	if body["version"] != Version {
		t.Errorf("version = %q, want %q", body["version"], Version)
	}
}

func TestAPI_Metrics(t *testing.T) {
	srv := newTestServer(t)
	if w := do(t, srv, "GET", "/metrics", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("metrics should be off by default, got %d", w.Code)
	}

	srv.EnableMetrics()
	do(t, srv, "GET", "/api/version", "", nil)
	w := do(t, srv, "GET", "/metrics", "", nil)
	expectStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "lifexp_http_requests_total") {
		t.Error("expected lifexp_http_requests_total in metrics output")
	}
}

// ─── Users ──────────────────────────────────────────────────────────────────

func TestAPI_CreateUserAndMe(t *testing.T) {
	srv := newTestServer(t)
	id := createUser(t, srv)

	w := do(t, srv, "GET", "/api/v1/me", id, nil)
	expectStatus(t, w, http.StatusOK)
	var p domain.Profile
	decode(t, w, &p)
	if p.ID != id || p.Progression.Level != 1 || p.Next.XPForNextLevel != 100 {
		t.Errorf("unexpected profile: %+v", p)
	}
}

func TestAPI_CreateUser_Invalid(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, "POST", "/api/v1/users", "", map[string]string{"name": "A"})
	expectStatus(t, w, http.StatusBadRequest)

	var body struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	decode(t, w, &body)
	if body.Error.Type != "invalid_argument" || !strings.Contains(body.Error.Message, "name") {
		t.Errorf("unexpected error body: %+v", body)
	}

	w = do(t, srv, "POST", "/api/v1/users", "", `{"name":"Valid","level":99}`)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestAPI_UserHeaderRequired(t *testing.T) {
	srv := newTestServer(t)
	expectStatus(t, do(t, srv, "GET", "/api/v1/me", "", nil), http.StatusBadRequest)
	expectStatus(t, do(t, srv, "GET", "/api/v1/tasks", "", nil), http.StatusBadRequest)
	expectStatus(t, do(t, srv, "GET", "/api/v1/me", "nobody", nil), http.StatusNotFound)
}

// ─── Tasks ──────────────────────────────────────────────────────────────────

func TestAPI_TaskLifecycle(t *testing.T) {
	srv := newTestServer(t)
	id := createUser(t, srv)

	w := do(t, srv, "POST", "/api/v1/tasks", id, domain.NewTask{
		Title: "Deadlift", Category: domain.StatStrength,
		Difficulty: domain.DifficultyHard, EstimatedMinutes: 45, IsHabit: true,
	})
	expectStatus(t, w, http.StatusCreated)
	var task domain.Task
	decode(t, w, &task)
	if task.HabitFrequency != domain.HabitDaily {
		t.Errorf("habit frequency = %q, want DAILY", task.HabitFrequency)
	}

	w = do(t, srv, "GET", "/api/v1/tasks?isHabit=true&category=strength", id, nil)
	expectStatus(t, w, http.StatusOK)
	var list struct {
		Tasks []domain.Task `json:"tasks"`
	}
	decode(t, w, &list)
	if len(list.Tasks) != 1 || list.Tasks[0].ID != task.ID {
		t.Fatalf("unexpected list: %+v", list)
	}

	expectStatus(t, do(t, srv, "GET", "/api/v1/tasks?difficulty=epic", id, nil), http.StatusBadRequest)

	w = do(t, srv, "PATCH", "/api/v1/tasks/"+task.ID, id, map[string]string{"title": "Squats"})
	expectStatus(t, w, http.StatusOK)
	decode(t, w, &task)
	if task.Title != "Squats" {
		t.Errorf("title = %q, want Squats", task.Title)
	}

	w = do(t, srv, "POST", "/api/v1/tasks/"+task.ID+"/complete", id, map[string]interface{}{"actualMinutes": 40})
	expectStatus(t, w, http.StatusOK)
	var res domain.CompletionResult
	decode(t, w, &res)
	// 50 + 8 + 0.5
	if res.XPEarned != 58 || res.StreakDays != 1 {
		t.Errorf("unexpected completion: xp=%d streak=%d", res.XPEarned, res.StreakDays)
	}

	w = do(t, srv, "GET", "/api/v1/tasks/"+task.ID, id, nil)
	expectStatus(t, w, http.StatusOK)
	decode(t, w, &task)
	if task.StreakCurrent != 1 || task.LastCompletedAt == nil {
		t.Errorf("streak not persisted: %+v", task.HabitStreakState)
	}

	w = do(t, srv, "GET", "/api/v1/me/history?limit=5", id, nil)
	expectStatus(t, w, http.StatusOK)
	var hist struct {
		Completions []domain.Completion `json:"completions"`
	}
	decode(t, w, &hist)
	if len(hist.Completions) != 1 || hist.Completions[0].XPEarned != 58 {
		t.Errorf("unexpected history: %+v", hist)
	}
	expectStatus(t, do(t, srv, "GET", "/api/v1/me/history?limit=x", id, nil), http.StatusBadRequest)

	expectStatus(t, do(t, srv, "DELETE", "/api/v1/tasks/"+task.ID, id, nil), http.StatusNoContent)
	expectStatus(t, do(t, srv, "DELETE", "/api/v1/tasks/"+task.ID, id, nil), http.StatusNotFound)
}

func TestAPI_CompleteTask_Invalid(t *testing.T) {
	srv := newTestServer(t)
	id := createUser(t, srv)

	w := do(t, srv, "POST", "/api/v1/tasks", id, domain.NewTask{
		Title: "Budget", Category: domain.StatWealth,
		Difficulty: domain.DifficultyMedium, EstimatedMinutes: 15,
	})
	var task domain.Task
	decode(t, w, &task)

	expectStatus(t, do(t, srv, "POST", "/api/v1/tasks/"+task.ID+"/complete", id, map[string]int{"actualMinutes": 0}), http.StatusBadRequest)
	expectStatus(t, do(t, srv, "POST", "/api/v1/tasks/"+task.ID+"/complete", id, "not json"), http.StatusBadRequest)
	expectStatus(t, do(t, srv, "POST", "/api/v1/tasks/missing/complete", id, map[string]int{"actualMinutes": 5}), http.StatusNotFound)
}

// ─── Quests ─────────────────────────────────────────────────────────────────

func TestAPI_Quests(t *testing.T) {
	srv := newTestServer(t)
	id := createUser(t, srv)

	w := do(t, srv, "GET", "/api/v1/quests/today", id, nil)
	expectStatus(t, w, http.StatusOK)
	var body struct {
		Quests []domain.Quest `json:"quests"`
	}
	decode(t, w, &body)
	if len(body.Quests) != 3 {
		t.Fatalf("expected 3 quests, got %d", len(body.Quests))
	}

	q := body.Quests[0]
	expectStatus(t, do(t, srv, "POST", "/api/v1/quests/"+q.ID+"/complete", id, nil), http.StatusOK)
	expectStatus(t, do(t, srv, "POST", "/api/v1/quests/"+q.ID+"/complete", id, nil), http.StatusConflict)
	expectStatus(t, do(t, srv, "POST", "/api/v1/quests/nope/complete", id, nil), http.StatusNotFound)
}

// ─── Calculators ────────────────────────────────────────────────────────────

func TestAPI_CalcXP(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		xp     int64
	}{
		{"medium with streak", `{"difficulty":"MEDIUM","actualMinutes":30,"streakDays":4}`, 200, 33},
		{"capped quest", `{"difficulty":"HARD","actualMinutes":200,"streakDays":30,"isQuestBonus":true}`, 200, 100},
		{"unknown difficulty", `{"difficulty":"EPIC","actualMinutes":10}`, 400, 0},
		{"negative minutes", `{"difficulty":"EASY","actualMinutes":-5}`, 400, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, "POST", "/api/v1/calc/xp", "", tt.body)
			expectStatus(t, w, tt.status)
			if tt.status != 200 {
				return
			}
			var body map[string]int64
			decode(t, w, &body)
			if body["xp"] != tt.xp {
				t.Errorf("xp = %d, want %d", body["xp"], tt.xp)
			}
		})
	}
}

func TestAPI_CalcLevel(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, "GET", "/api/v1/calc/level?xp=135", "", nil)
	expectStatus(t, w, http.StatusOK)
	var body levelResponse
	decode(t, w, &body)
	if body.Level != 2 || body.XPIntoLevel != 35 || body.XPForNextLevel != 135 || body.Title != "Wandering Potato" {
		t.Errorf("unexpected level body: %+v", body)
	}

	expectStatus(t, do(t, srv, "GET", "/api/v1/calc/level?xp=lots", "", nil), http.StatusBadRequest)

	w = do(t, srv, "GET", "/api/v1/calc/level?xp=9223372036854775807", "", nil)
	expectStatus(t, w, http.StatusOK)
	body = levelResponse{}
	decode(t, w, &body)
	if body.Level < 2 || body.Title != "Suspiciously Productive" {
		t.Errorf("unexpected level body for max xp: %+v", body)
	}
}

// ─── CORS ───────────────────────────────────────────────────────────────────

func TestAPI_CORS(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, "OPTIONS", "/api/v1/tasks", "", nil)
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS: Access-Control-Allow-Origin should be *")
	}

	srv.SetCORSOrigins([]string{"https://app.example"})
	req := httptest.NewRequest("OPTIONS", "/api/v1/tasks", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("CORS: unknown origin should not be allowed")
	}
}
