package httpapi_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"jobtracker/internal/httpapi"
	"jobtracker/internal/store/memstore"
	"jobtracker/internal/tracker"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := tracker.NewService(memstore.New(),
		tracker.Settings{DailyGoal: 2, Location: time.UTC},
		tracker.WithClock(func() time.Time { return now }),
	)
	mux := http.NewServeMux()
	httpapi.NewHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return resp.StatusCode, out
}

const jobBody = `{"job_title": "Backend Engineer", "company_name": "Acme",
	"company_url": "https://acme.example", "job_description": "Build things"}`

// ── Applications ───────────────────────────────────────────────────────────

func TestAddJobAndUpdateField(t *testing.T) {
	srv := newServer(t)

	code, body := do(t, srv, http.MethodPost, "/add_job/", jobBody)
	if code != http.StatusOK || body["success"] != true {
		t.Fatalf("add_job: %d %v", code, body)
	}
	job := body["job"].(map[string]any)
	if job["status"] != "Preparing Application" || job["source"] != "Careers Website" {
		t.Errorf("defaults not applied: %v", job)
	}

	code, body = do(t, srv, http.MethodPut, "/update_job_field/1/", `{"status": "Applied"}`)
	if code != http.StatusOK || body["success"] != true {
		t.Fatalf("update_job_field: %d %v", code, body)
	}

	code, body = do(t, srv, http.MethodGet, "/api/jobs/", "")
	if code != http.StatusOK {
		t.Fatalf("api/jobs: %d %v", code, body)
	}
	jobs := body["jobs"].([]any)
	steps := jobs[0].(map[string]any)["steps"].([]any)
	if len(steps) != 1 || steps[0].(map[string]any)["title"] != "Applied" {
		t.Errorf("steps = %v, want one Applied step", steps)
	}
	if body["today_jobs_count"] != float64(1) || body["daily_goal"] != float64(2) || body["goal_reached"] != false {
		t.Errorf("progress fields wrong: %v", body)
	}
	if len(body["status_choices"].([]any)) != 8 {
		t.Errorf("status_choices = %v", body["status_choices"])
	}
}

func TestUpdateField_Errors(t *testing.T) {
	srv := newServer(t)
	do(t, srv, http.MethodPost, "/add_job/", jobBody)

	cases := []struct {
		name string
		path string
		body string
		code int
		msg  string
	}{
		{"invalid status", "/update_job_field/1/", `{"status": "Hired"}`, http.StatusBadRequest, "Invalid status"},
		{"invalid source", "/update_job_field/1/", `{"source": "Indeed"}`, http.StatusBadRequest, "Invalid source"},
		{"unknown field", "/update_job_field/1/", `{"company_name": "x"}`, http.StatusBadRequest, ""},
		{"two fields", "/update_job_field/1/", `{"salary": "1", "status": "Applied"}`, http.StatusBadRequest, ""},
		{"not json", "/update_job_field/1/", `salary=1`, http.StatusBadRequest, ""},
		{"missing application", "/update_job_field/99/", `{"salary": "1"}`, http.StatusNotFound, ""},
		{"non-numeric id", "/update_job_field/abc/", `{"salary": "1"}`, http.StatusNotFound, ""},
	}
	for _, tc := range cases {
		code, body := do(t, srv, http.MethodPut, tc.path, tc.body)
		if code != tc.code {
			t.Errorf("%s: status %d, want %d (%v)", tc.name, code, tc.code, body)
		}
		if body["success"] != false {
			t.Errorf("%s: success = %v, want false", tc.name, body["success"])
		}
		if tc.msg != "" && body["error"] != tc.msg {
			t.Errorf("%s: error = %v, want %q", tc.name, body["error"], tc.msg)
		}
	}
}

func TestAddStep(t *testing.T) {
	srv := newServer(t)
	do(t, srv, http.MethodPost, "/add_job/", jobBody)

	code, body := do(t, srv, http.MethodPost, "/add_step/1/", `{"title": "Phone screen", "description": "30 min"}`)
	if code != http.StatusOK || body["success"] != true {
		t.Fatalf("add_step: %d %v", code, body)
	}
	if code, _ := do(t, srv, http.MethodPost, "/add_step/1/", `{"title": "", "description": "x"}`); code != http.StatusBadRequest {
		t.Errorf("empty title: status %d, want 400", code)
	}
	if code, _ := do(t, srv, http.MethodPost, "/add_step/7/", `{"title": "t", "description": "d"}`); code != http.StatusNotFound {
		t.Errorf("missing application: status %d, want 404", code)
	}
}

func TestAddJob_Validation(t *testing.T) {
	srv := newServer(t)
	if code, _ := do(t, srv, http.MethodPost, "/add_job/", `{"job_title": "x"}`); code != http.StatusBadRequest {
		t.Errorf("missing fields: status %d, want 400", code)
	}
	if code, _ := do(t, srv, http.MethodPost, "/add_job/", `{`); code != http.StatusBadRequest {
		t.Errorf("broken JSON: status %d, want 400", code)
	}
}

// ── Job boards ─────────────────────────────────────────────────────────────

func TestJobBoards(t *testing.T) {
	srv := newServer(t)
	do(t, srv, http.MethodPost, "/add_job_board/", `{"name": "LinkedIn", "url": "https://linkedin.example"}`)
	do(t, srv, http.MethodPost, "/add_job_board/", `{"name": "WTTJ", "url": "https://wttj.example"}`)

	code, body := do(t, srv, http.MethodPut, "/update_last_visited/1/", "")
	if code != http.StatusOK || body["last_visited"] == nil {
		t.Fatalf("update_last_visited: %d %v", code, body)
	}

	_, body = do(t, srv, http.MethodGet, "/api/job-boards/", "")
	boards := body["job_boards"].([]any)
	first := boards[0].(map[string]any)
	if len(boards) != 2 || first["name"] != "WTTJ" || first["visited_today"] != false {
		t.Errorf("job_boards = %v, want unvisited WTTJ first", boards)
	}

	if code, _ := do(t, srv, http.MethodPut, "/update_last_visited/9/", ""); code != http.StatusNotFound {
		t.Errorf("missing board: status %d, want 404", code)
	}
}

// ── Research data / work history ───────────────────────────────────────────

func TestResearchData(t *testing.T) {
	srv := newServer(t)
	do(t, srv, http.MethodPost, "/add_job/", jobBody)

	code, body := do(t, srv, http.MethodPost, "/add_research_data/1/", `{"category": 3, "info": "Series B"}`)
	if code != http.StatusOK {
		t.Fatalf("add_research_data: %d %v", code, body)
	}
	rdID := int(body["research_data"].(map[string]any)["id"].(float64))

	code, body = do(t, srv, http.MethodPut, "/update_research_data/"+strconv.Itoa(rdID)+"/", `{"info": "Series C"}`)
	if code != http.StatusOK || body["research_data"].(map[string]any)["info"] != "Series C" {
		t.Errorf("update_research_data: %d %v", code, body)
	}
	if code, _ := do(t, srv, http.MethodPost, "/add_research_data/1/", `{"category": 9, "info": "x"}`); code != http.StatusBadRequest {
		t.Errorf("bad category: status %d, want 400", code)
	}
}

func TestWorkHistory(t *testing.T) {
	srv := newServer(t)
	code, body := do(t, srv, http.MethodPost, "/add_work_experience/",
		`{"job_title": "Engineer", "company_name": "Old Co", "company_url": "https://old.example",
		  "start_date": "2019-01-01", "end_date": "2021-06-30"}`)
	if code != http.StatusOK {
		t.Fatalf("add_work_experience: %d %v", code, body)
	}
	expID := int(body["work_experience"].(map[string]any)["id"].(float64))

	code, body = do(t, srv, http.MethodPost, "/add_work_achievement/"+strconv.Itoa(expID)+"/", `{"description": "Shipped v2"}`)
	if code != http.StatusOK {
		t.Fatalf("add_work_achievement: %d %v", code, body)
	}
	achID := int(body["work_achievement"].(map[string]any)["id"].(float64))

	if code, body := do(t, srv, http.MethodPut, "/update_work_achievement/"+strconv.Itoa(achID)+"/", `{"description": "Shipped v3"}`); code != http.StatusOK {
		t.Fatalf("update_work_achievement: %d %v", code, body)
	}

	_, body = do(t, srv, http.MethodGet, "/api/work-experiences/", "")
	exps := body["work_experiences"].([]any)
	achs := exps[0].(map[string]any)["work_achievements"].([]any)
	if len(exps) != 1 || len(achs) != 1 || achs[0].(map[string]any)["description"] != "Shipped v3" {
		t.Errorf("work_experiences = %v", exps)
	}

	if code, _ := do(t, srv, http.MethodPost, "/add_work_experience/",
		`{"job_title": "x", "company_name": "y", "company_url": "z", "start_date": "2020-02-01", "end_date": "2020-01-01"}`); code != http.StatusBadRequest {
		t.Errorf("end before start: status %d, want 400", code)
	}
}

func TestWrongMethod(t *testing.T) {
	srv := newServer(t)
	resp, err := srv.Client().Get(srv.URL + "/add_job/")
	if err != nil {
		t.Fatalf("GET /add_job/: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status %d, want 405", resp.StatusCode)
	}
}
