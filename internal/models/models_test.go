package models

import (
	"database/sql"
	"testing"

	"github.com/blocklift/blocklift/internal/database"
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

func seedCoach(t testing.TB, db *sql.DB, username string) *User {
	t.Helper()
	u, err := CreateUser(db, username, "Coach "+username, "password", "", RoleCoach, sql.NullInt64{})
	if err != nil {
		t.Fatalf("seed coach %q: %v", username, err)
	}
	return u
}

func seedStudent(t testing.TB, db *sql.DB, username string, coachID int64) *User {
	t.Helper()
	u, err := CreateUser(db, username, "Student "+username, "password", "", RoleStudent,
		sql.NullInt64{Int64: coachID, Valid: true})
	if err != nil {
		t.Fatalf("seed student %q: %v", username, err)
	}
	return u
}

func seedBlock(t testing.TB, db *sql.DB, coach *User, studentID int64, startDate string, weeks int) *Block {
	t.Helper()
	b, err := CreateBlock(db, coach.Actor(), studentID, "Test Block", startDate, weeks)
	if err != nil {
		t.Fatalf("seed block: %v", err)
	}
	return b
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }

// simpleTree builds a one-exercise, one-section workout payload for tests
// that only need something valid to save.
func simpleTree(weekID int64, name, day string) WorkoutTreeParams {
	return WorkoutTreeParams{
		WeekID: weekID,
		Name:   name,
		Day:    day,
		Exercises: []ExerciseNode{
			{Name: "Squat", Sections: []SectionNode{
				{SectionParams: SectionParams{Load: floatPtr(100), LoadUnit: LoadUnitKg, Series: 3, Reps: intPtr(5), RPE: floatPtr(8)}},
			}},
		},
	}
}
