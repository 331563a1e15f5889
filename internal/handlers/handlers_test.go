package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/blocklift/blocklift/internal/database"
	"github.com/blocklift/blocklift/internal/middleware"
	"github.com/blocklift/blocklift/internal/models"
)

func testDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testSessionManager() *scs.SessionManager {
	sm := scs.New()
	sm.Lifetime = 30 * 24 * time.Hour
	return sm
}

func seedCoach(t testing.TB, db *sql.DB) *models.User {
	t.Helper()
	u, err := models.CreateUser(db, "coach", "Coach", "pw", "", models.RoleCoach, sql.NullInt64{})
	if err != nil {
		t.Fatalf("seed coach: %v", err)
	}
	return u
}

func seedStudent(t testing.TB, db *sql.DB, coachID int64) *models.User {
	t.Helper()
	u, err := models.CreateUser(db, "student", "Student", "pw", "", models.RoleStudent,
		sql.NullInt64{Int64: coachID, Valid: true})
	if err != nil {
		t.Fatalf("seed student: %v", err)
	}
	return u
}

// request builds an authenticated request with chi URL params injected, the
// way the router would.
func request(t testing.TB, user *models.User, method, target string, body any, params map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	r := httptest.NewRequest(method, target, &buf)
	if user != nil {
		r = middleware.WithUser(r, user)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	return r
}

func decodeBody(t testing.TB, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
}

func TestBlocksCreateAndShow(t *testing.T) {
	db := testDB(t)
	coach := seedCoach(t, db)
	student := seedStudent(t, db, coach.ID)
	h := &Blocks{DB: db, Log: discardLogger()}

	rr := httptest.NewRecorder()
	h.Create(rr, request(t, coach, http.MethodPost, "/api/students/1/blocks",
		map[string]any{"title": "Base Block", "start_date": "2025-01-06", "weeks_count": 4},
		map[string]string{"id": fmt.Sprint(student.ID)}))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rr.Code, rr.Body.String())
	}

	var created blockView
	decodeBody(t, rr, &created)
	if created.Title != "Base Block" || created.EndDate != "2025-02-02" {
		t.Errorf("created = %+v", created)
	}
	if len(created.Weeks) != 4 {
		t.Fatalf("weeks = %d, want 4", len(created.Weeks))
	}

	t.Run("student can view", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Show(rr, request(t, student, http.MethodGet, "/api/blocks/1", nil,
			map[string]string{"id": fmt.Sprint(created.ID)}))
		if rr.Code != http.StatusOK {
			t.Fatalf("show status = %d", rr.Code)
		}
	})

	t.Run("validation error maps to 400", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Create(rr, request(t, coach, http.MethodPost, "/api/students/1/blocks",
			map[string]any{"title": "", "start_date": "2025-01-06", "weeks_count": 4},
			map[string]string{"id": fmt.Sprint(student.ID)}))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rr.Code)
		}
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Create(rr, request(t, coach, http.MethodPost, "/api/students/1/blocks",
			map[string]any{"title": "X", "start_date": "2025-01-06", "weeks_count": 4, "bogus": true},
			map[string]string{"id": fmt.Sprint(student.ID)}))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rr.Code)
		}
	})

	t.Run("foreign block is 404", func(t *testing.T) {
		other, err := models.CreateUser(db, "other", "Other", "pw", "", models.RoleCoach, sql.NullInt64{})
		if err != nil {
			t.Fatalf("seed other: %v", err)
		}
		rr := httptest.NewRecorder()
		h.Show(rr, request(t, other, http.MethodGet, "/api/blocks/1", nil,
			map[string]string{"id": fmt.Sprint(created.ID)}))
		if rr.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rr.Code)
		}
	})
}

func TestWorkoutsSaveRoundTrip(t *testing.T) {
	db := testDB(t)
	coach := seedCoach(t, db)
	student := seedStudent(t, db, coach.ID)
	block, err := models.CreateBlock(db, coach.Actor(), student.ID, "Block", "2025-01-06", 4)
	if err != nil {
		t.Fatalf("seed block: %v", err)
	}

	h := &Workouts{DB: db, Log: discardLogger()}

	body := map[string]any{
		"name": "Lower A",
		"day":  "2025-01-07",
		"exercises": []map[string]any{
			{"name": "Squat", "sections": []map[string]any{
				{"load": 140.0, "load_unit": "kg", "series": 3, "reps": 5, "rpe": 8.0},
			}},
		},
	}

	rr := httptest.NewRecorder()
	h.Create(rr, request(t, coach, http.MethodPost, "/api/weeks/1/workouts", body,
		map[string]string{"id": fmt.Sprint(block.Weeks[0].ID)}))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rr.Code, rr.Body.String())
	}

	var created workoutView
	decodeBody(t, rr, &created)
	if len(created.Exercises) != 1 || len(created.Exercises[0].Sections) != 1 {
		t.Fatalf("tree = %+v", created)
	}
	section := created.Exercises[0].Sections[0]
	if section.EstimatedPR == nil || *section.EstimatedPR != 172.67 {
		t.Errorf("estimated_pr = %v, want 172.67", section.EstimatedPR)
	}

	t.Run("student cannot save", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Save(rr, request(t, student, http.MethodPut, "/api/workouts/1", body,
			map[string]string{"id": fmt.Sprint(created.ID)}))
		if rr.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rr.Code)
		}
	})
}

func TestSectionsBatchUpdate(t *testing.T) {
	db := testDB(t)
	coach := seedCoach(t, db)
	student := seedStudent(t, db, coach.ID)
	block, err := models.CreateBlock(db, coach.Actor(), student.ID, "Block", "2025-01-06", 4)
	if err != nil {
		t.Fatalf("seed block: %v", err)
	}
	w, err := models.SaveWorkoutTree(db, coach.Actor(), 0, models.WorkoutTreeParams{
		WeekID: block.Weeks[0].ID,
		Name:   "Day A",
		Day:    "2025-01-06",
		Exercises: []models.ExerciseNode{
			{Name: "Squat", Sections: []models.SectionNode{
				{SectionParams: models.SectionParams{LoadUnit: "kg", Series: 3}},
			}},
		},
	})
	if err != nil {
		t.Fatalf("seed workout: %v", err)
	}
	sectionID := w.Exercises[0].Sections[0].ID

	h := &Sections{DB: db, Log: discardLogger()}

	rr := httptest.NewRecorder()
	h.BatchUpdate(rr, request(t, student, http.MethodPost, "/api/sections/batch", map[string]any{
		"sections": []map[string]any{
			{"id": sectionID, "load": 100.0, "load_unit": "kg", "series": 3, "reps": 5, "rpe": 8.0, "done": true},
		},
	}, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	var views []sectionView
	decodeBody(t, rr, &views)
	if len(views) != 1 || !views[0].Done {
		t.Fatalf("views = %+v", views)
	}
	if views[0].EstimatedPR == nil || *views[0].EstimatedPR != 123.33 {
		t.Errorf("estimated_pr = %v, want 123.33", views[0].EstimatedPR)
	}
}

func TestImportsParseMultipart(t *testing.T) {
	db := testDB(t)
	coach := seedCoach(t, db)
	h := &Imports{DB: db, Log: discardLogger()}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range map[string]string{
		"week1.csv":  "Week,Workout,Exercise,Sets,Reps\n1,Day A,Squat,3,5\n",
		"broken.csv": "Nope\n",
	} {
		fw, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		fw.Write([]byte(content))
	}
	mw.Close()

	r := httptest.NewRequest(http.MethodPost, "/api/imports", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r = middleware.WithUser(r, coach)

	rr := httptest.NewRecorder()
	h.Parse(rr, r)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	var resp parseResponse
	decodeBody(t, rr, &resp)
	if len(resp.Drafts) != 1 {
		t.Fatalf("drafts = %d, want 1", len(resp.Drafts))
	}
	if resp.Drafts[0].WeekNumber != 1 {
		t.Errorf("week = %d, want 1", resp.Drafts[0].WeekNumber)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].File != "broken.csv" {
		t.Errorf("errors = %+v", resp.Errors)
	}
}

func TestImportsParseFileLimit(t *testing.T) {
	db := testDB(t)
	coach := seedCoach(t, db)
	h := &Imports{DB: db, Log: discardLogger()}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for i := 0; i < 6; i++ {
		fw, _ := mw.CreateFormFile("files", fmt.Sprintf("week%d.csv", i+1))
		fw.Write([]byte("Week,Workout,Exercise\n1,Day A,Squat\n"))
	}
	mw.Close()

	r := httptest.NewRequest(http.MethodPost, "/api/imports", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r = middleware.WithUser(r, coach)

	rr := httptest.NewRecorder()
	h.Parse(rr, r)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "5 files") {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestAuthLoginLogout(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager()
	coach := seedCoach(t, db)
	h := &Auth{DB: db, Sessions: sm, Log: discardLogger()}

	t.Run("valid credentials", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/api/login",
			strings.NewReader(`{"username":"coach","password":"pw"}`))
		rr := httptest.NewRecorder()
		sm.LoadAndSave(http.HandlerFunc(h.Login)).ServeHTTP(rr, r)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
		}
		var resp loginResponse
		decodeBody(t, rr, &resp)
		if resp.ID != coach.ID || resp.Role != models.RoleCoach {
			t.Errorf("resp = %+v", resp)
		}
	})

	t.Run("wrong password is 401", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/api/login",
			strings.NewReader(`{"username":"coach","password":"nope"}`))
		rr := httptest.NewRecorder()
		sm.LoadAndSave(http.HandlerFunc(h.Login)).ServeHTTP(rr, r)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rr.Code)
		}
	})

	t.Run("logout", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
		rr := httptest.NewRecorder()
		sm.LoadAndSave(http.HandlerFunc(h.Logout)).ServeHTTP(rr, r)
		if rr.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rr.Code)
		}
	})
}
