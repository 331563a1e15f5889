package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Workout is a single scheduled training session within a week. The student
// and coach references are denormalized from the parent block.
type Workout struct {
	ID              int64
	WeekID          int64
	StudentID       int64
	CoachID         int64
	Name            string
	Day             string // YYYY-MM-DD
	DurationMinutes sql.NullInt64
	Description     sql.NullString
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Populated by GetWorkoutTree and list queries.
	Exercises []*Exercise
}

func getWorkoutRow(db *sql.DB, id int64) (*Workout, error) {
	w := &Workout{}
	err := db.QueryRow(
		`SELECT id, week_id, student_id, coach_id, name, day, duration_minutes, description, created_at, updated_at
		 FROM workouts WHERE id = ?`, id,
	).Scan(&w.ID, &w.WeekID, &w.StudentID, &w.CoachID, &w.Name, &w.Day,
		&w.DurationMinutes, &w.Description, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get workout %d: %w", id, err)
	}
	return w, nil
}

// getWorkoutForView loads a workout visible to the actor.
func getWorkoutForView(db *sql.DB, actor Actor, id int64) (*Workout, error) {
	w, err := getWorkoutRow(db, id)
	if err != nil {
		return nil, err
	}
	if !actor.canView(w.CoachID, w.StudentID) {
		return nil, ErrNotFound
	}
	return w, nil
}

// getWorkoutForManage loads a workout the actor may mutate.
func getWorkoutForManage(db *sql.DB, actor Actor, id int64) (*Workout, error) {
	w, err := getWorkoutForView(db, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.canManage(w.CoachID) {
		return nil, ErrForbidden
	}
	return w, nil
}

// GetWorkoutTree retrieves a workout with its exercises and sections, in
// stored order.
func GetWorkoutTree(db *sql.DB, actor Actor, id int64) (*Workout, error) {
	w, err := getWorkoutForView(db, actor, id)
	if err != nil {
		return nil, err
	}
	w.Exercises, err = listExercisesWithSections(db, w.ID)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// ListWorkoutsByWeek returns a week's workouts with full exercise/section
// trees, ordered by scheduled day.
func ListWorkoutsByWeek(db *sql.DB, actor Actor, weekID int64) ([]*Workout, error) {
	if _, err := getWeekForView(db, actor, weekID); err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT id, week_id, student_id, coach_id, name, day, duration_minutes, description, created_at, updated_at
		FROM workouts
		WHERE week_id = ?
		ORDER BY day, id`, weekID)
	if err != nil {
		return nil, fmt.Errorf("models: list workouts of week %d: %w", weekID, err)
	}
	defer rows.Close()

	var workouts []*Workout
	for rows.Next() {
		w := &Workout{}
		if err := rows.Scan(&w.ID, &w.WeekID, &w.StudentID, &w.CoachID, &w.Name, &w.Day,
			&w.DurationMinutes, &w.Description, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("models: scan workout: %w", err)
		}
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, w := range workouts {
		w.Exercises, err = listExercisesWithSections(db, w.ID)
		if err != nil {
			return nil, err
		}
	}
	return workouts, nil
}

// DeleteWorkout removes a workout and its exercises/sections (CASCADE).
func DeleteWorkout(db *sql.DB, actor Actor, id int64) error {
	if _, err := getWorkoutForManage(db, actor, id); err != nil {
		return err
	}
	result, err := db.Exec(`DELETE FROM workouts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("models: delete workout %d: %w", id, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
