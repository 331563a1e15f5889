package models

import (
	"errors"
	"testing"
)

func TestSaveWorkoutTreeCreate(t *testing.T) {
	db := testDB(t)
	coach := seedCoach(t, db, "coach")
	student := seedStudent(t, db, "student", coach.ID)
	b := seedBlock(t, db, coach, student.ID, "2025-01-06", 4)

	params := WorkoutTreeParams{
		WeekID:          b.Weeks[0].ID,
		Name:            "Lower A",
		Day:             "2025-01-07",
		DurationMinutes: intPtr(75),
		Description:     strPtr("heavy day"),
		Exercises: []ExerciseNode{
			{Name: "Squat", Sections: []SectionNode{
				{SectionParams: SectionParams{Load: floatPtr(140), LoadUnit: LoadUnitKg, Series: 3, Reps: intPtr(5), RPE: floatPtr(8)}},
				{SectionParams: SectionParams{Load: floatPtr(120), LoadUnit: LoadUnitKg, Series: 2, Reps: intPtr(8), RPE: floatPtr(7)}},
			}},
			{Name: "Romanian Deadlift", Sections: []SectionNode{
				{SectionParams: SectionParams{Load: floatPtr(2), LoadUnit: LoadUnitRIR, Series: 3, Reps: intPtr(10)}},
			}},
		},
	}

	w, err := SaveWorkoutTree(db, coach.Actor(), 0, params)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if w.Name != "Lower A" || w.Day != "2025-01-07" {
		t.Errorf("workout = %q on %s, want Lower A on 2025-01-07", w.Name, w.Day)
	}
	if !w.DurationMinutes.Valid || w.DurationMinutes.Int64 != 75 {
		t.Errorf("duration = %v, want 75", w.DurationMinutes)
	}
	if len(w.Exercises) != 2 {
		t.Fatalf("exercises = %d, want 2", len(w.Exercises))
	}
	if w.Exercises[0].Position != 0 || w.Exercises[1].Position != 1 {
		t.Errorf("positions = %d,%d, want 0,1", w.Exercises[0].Position, w.Exercises[1].Position)
	}
	squat := w.Exercises[0]
	if len(squat.Sections) != 2 {
		t.Fatalf("squat sections = %d, want 2", len(squat.Sections))
	}
	if !squat.Sections[0].EstimatedPR.Valid {
		t.Error("first squat set should carry an estimated PR")
	}
	rdl := w.Exercises[1]
	if rdl.Sections[0].EstimatedPR.Valid {
		t.Error("rir-loaded set must not carry an estimated PR")
	}
}

func TestSaveWorkoutTreeUpdateAndDestroy(t *testing.T) {
	db := testDB(t)
	coach := seedCoach(t, db, "coach")
	student := seedStudent(t, db, "student", coach.ID)
	b := seedBlock(t, db, coach, student.ID, "2025-01-06", 4)

	w, err := SaveWorkoutTree(db, coach.Actor(), 0, WorkoutTreeParams{
		WeekID: b.Weeks[0].ID,
		Name:   "Upper A",
		Day:    "2025-01-08",
		Exercises: []ExerciseNode{
			{Name: "Bench Press", Sections: []SectionNode{
				{SectionParams: SectionParams{Load: floatPtr(100), LoadUnit: LoadUnitKg, Series: 3, Reps: intPtr(5), RPE: floatPtr(8)}},
				{SectionParams: SectionParams{Load: floatPtr(80), LoadUnit: LoadUnitKg, Series: 2, Reps: intPtr(10), RPE: floatPtr(7)}},
			}},
			{Name: "Barbell Row", Sections: []SectionNode{
				{SectionParams: SectionParams{Load: floatPtr(90), LoadUnit: LoadUnitKg, Series: 3, Reps: intPtr(8), RPE: floatPtr(7)}},
			}},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	bench := w.Exercises[0]
	row := w.Exercises[1]

	// Rename the workout, rename bench, destroy its second set, destroy the
	// row entirely, and add a new exercise.
	updated, err := SaveWorkoutTree(db, coach.Actor(), w.ID, WorkoutTreeParams{
		Name: "Upper A (revised)",
		Day:  "2025-01-09",
		Exercises: []ExerciseNode{
			{ID: bench.ID, Name: "Paused Bench Press", Sections: []SectionNode{
				{ID: bench.Sections[0].ID, SectionParams: SectionParams{Load: floatPtr(105), LoadUnit: LoadUnitKg, Series: 3, Reps: intPtr(5), RPE: floatPtr(9)}},
				{ID: bench.Sections[1].ID, Destroy: true},
			}},
			{ID: row.ID, Destroy: true},
			{Name: "Pull-Up", Sections: []SectionNode{
				{SectionParams: SectionParams{LoadUnit: LoadUnitRIR, Load: floatPtr(2), Series: 3, Reps: intPtr(8)}},
			}},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Upper A (revised)" || updated.Day != "2025-01-09" {
		t.Errorf("workout = %q on %s after update", updated.Name, updated.Day)
	}
	if len(updated.Exercises) != 2 {
		t.Fatalf("exercises = %d, want 2", len(updated.Exercises))
	}
	if updated.Exercises[0].ID != bench.ID || updated.Exercises[0].Name != "Paused Bench Press" {
		t.Errorf("exercise[0] = %d %q, want renamed bench %d", updated.Exercises[0].ID, updated.Exercises[0].Name, bench.ID)
	}
	if len(updated.Exercises[0].Sections) != 1 {
		t.Fatalf("bench sections = %d, want 1", len(updated.Exercises[0].Sections))
	}
	if got := updated.Exercises[0].Sections[0]; got.ID != bench.Sections[0].ID || !got.Load.Valid || got.Load.Float64 != 105 {
		t.Errorf("bench set = id %d load %v", got.ID, got.Load)
	}
	if updated.Exercises[1].Name != "Pull-Up" {
		t.Errorf("exercise[1] = %q, want Pull-Up", updated.Exercises[1].Name)
	}
}

func TestSaveWorkoutTreeRollsBackOnBadNode(t *testing.T) {
	db := testDB(t)
	coach := seedCoach(t, db, "coach")
	student := seedStudent(t, db, "student", coach.ID)
	b := seedBlock(t, db, coach, student.ID, "2025-01-06", 4)

	w, err := SaveWorkoutTree(db, coach.Actor(), 0, simpleTree(b.Weeks[0].ID, "Day A", "2025-01-06"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Second exercise references an id that does not exist; the rename of the
	// first must not survive.
	_, err = SaveWorkoutTree(db, coach.Actor(), w.ID, WorkoutTreeParams{
		Name: "Day A",
		Day:  "2025-01-06",
		Exercises: []ExerciseNode{
			{ID: w.Exercises[0].ID, Name: "Renamed Squat"},
			{ID: 99999, Name: "Ghost"},
		},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	reloaded, err := GetWorkoutTree(db, coach.Actor(), w.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Exercises[0].Name != "Squat" {
		t.Errorf("exercise name = %q after failed save, want Squat", reloaded.Exercises[0].Name)
	}
}

func TestSaveWorkoutTreeDayValidation(t *testing.T) {
	db := testDB(t)
	coach := seedCoach(t, db, "coach")
	student := seedStudent(t, db, "student", coach.ID)
	b := seedBlock(t, db, coach, student.ID, "2025-01-06", 4)

	cases := []struct {
		name string
		day  string
	}{
		{"before week", "2025-01-05"},
		{"after week", "2025-01-13"},
		{"garbage", "next tuesday"},
		{"empty", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SaveWorkoutTree(db, coach.Actor(), 0, simpleTree(b.Weeks[0].ID, "Day A", tc.day))
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}

	// Boundary days are fine.
	for _, day := range []string{"2025-01-06", "2025-01-12"} {
		if _, err := SaveWorkoutTree(db, coach.Actor(), 0, simpleTree(b.Weeks[0].ID, "Session "+day, day)); err != nil {
			t.Errorf("day %s: %v", day, err)
		}
	}
}

func TestStudentCannotSaveWorkoutTree(t *testing.T) {
	db := testDB(t)
	coach := seedCoach(t, db, "coach")
	student := seedStudent(t, db, "student", coach.ID)
	b := seedBlock(t, db, coach, student.ID, "2025-01-06", 4)

	if _, err := SaveWorkoutTree(db, student.Actor(), 0, simpleTree(b.Weeks[0].ID, "Day A", "2025-01-06")); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestListWorkoutsByWeekOrdersByDay(t *testing.T) {
	db := testDB(t)
	coach := seedCoach(t, db, "coach")
	student := seedStudent(t, db, "student", coach.ID)
	b := seedBlock(t, db, coach, student.ID, "2025-01-06", 4)
	weekID := b.Weeks[0].ID

	if _, err := SaveWorkoutTree(db, coach.Actor(), 0, simpleTree(weekID, "Friday Session", "2025-01-10")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := SaveWorkoutTree(db, coach.Actor(), 0, simpleTree(weekID, "Monday Session", "2025-01-06")); err != nil {
		t.Fatalf("save: %v", err)
	}

	workouts, err := ListWorkoutsByWeek(db, student.Actor(), weekID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(workouts) != 2 {
		t.Fatalf("workouts = %d, want 2", len(workouts))
	}
	if workouts[0].Name != "Monday Session" || workouts[1].Name != "Friday Session" {
		t.Errorf("order = %q, %q", workouts[0].Name, workouts[1].Name)
	}
	if len(workouts[0].Exercises) != 1 {
		t.Errorf("trees not loaded: exercises = %d", len(workouts[0].Exercises))
	}
}

func TestDeleteExercise(t *testing.T) {
	db := testDB(t)
	coach := seedCoach(t, db, "coach")
	student := seedStudent(t, db, "student", coach.ID)
	b := seedBlock(t, db, coach, student.ID, "2025-01-06", 4)

	w, err := SaveWorkoutTree(db, coach.Actor(), 0, simpleTree(b.Weeks[0].ID, "Day A", "2025-01-06"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	exerciseID := w.Exercises[0].ID

	if err := DeleteExercise(db, student.Actor(), exerciseID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("student delete err = %v, want ErrForbidden", err)
	}
	if err := DeleteExercise(db, coach.Actor(), exerciseID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	reloaded, err := GetWorkoutTree(db, coach.Actor(), w.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded.Exercises) != 0 {
		t.Errorf("exercises = %d after delete, want 0", len(reloaded.Exercises))
	}
}
