package models

import (
	"database/sql"
	"errors"
	"fmt"
)

// Exercise is a named movement within a workout, carrying an ordered list of
// sections.
type Exercise struct {
	ID        int64
	WorkoutID int64
	Name      string
	Position  int

	Sections []*Section
}

// listExercisesWithSections loads a workout's exercises in position order,
// each with its sections in position order.
func listExercisesWithSections(db *sql.DB, workoutID int64) ([]*Exercise, error) {
	rows, err := db.Query(
		`SELECT id, workout_id, name, position FROM exercises WHERE workout_id = ? ORDER BY position, id`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("models: list exercises of workout %d: %w", workoutID, err)
	}
	defer rows.Close()

	var exercises []*Exercise
	byID := make(map[int64]*Exercise)
	for rows.Next() {
		e := &Exercise{}
		if err := rows.Scan(&e.ID, &e.WorkoutID, &e.Name, &e.Position); err != nil {
			return nil, fmt.Errorf("models: scan exercise: %w", err)
		}
		exercises = append(exercises, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(exercises) == 0 {
		return nil, nil
	}

	sRows, err := db.Query(`
		SELECT s.id, s.exercise_id, s.position, s.load, s.load_unit, s.series, s.reps,
		       s.equipment, s.rpe, s.estimated_pr, s.done
		FROM sections s
		JOIN exercises e ON e.id = s.exercise_id
		WHERE e.workout_id = ?
		ORDER BY s.position, s.id`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("models: list sections of workout %d: %w", workoutID, err)
	}
	defer sRows.Close()

	for sRows.Next() {
		s := &Section{}
		if err := sRows.Scan(&s.ID, &s.ExerciseID, &s.Position, &s.Load, &s.LoadUnit, &s.Series,
			&s.Reps, &s.Equipment, &s.RPE, &s.EstimatedPR, &s.Done); err != nil {
			return nil, fmt.Errorf("models: scan section: %w", err)
		}
		if e, ok := byID[s.ExerciseID]; ok {
			e.Sections = append(e.Sections, s)
		}
	}
	return exercises, sRows.Err()
}

// exerciseOwners resolves the coach/student owning an exercise via its
// workout.
func exerciseOwners(db *sql.DB, id int64) (coachID, studentID, workoutID int64, err error) {
	err = db.QueryRow(
		`SELECT w.coach_id, w.student_id, w.id
		 FROM exercises e
		 JOIN workouts w ON w.id = e.workout_id
		 WHERE e.id = ?`, id,
	).Scan(&coachID, &studentID, &workoutID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, 0, ErrNotFound
	}
	if err != nil {
		return 0, 0, 0, fmt.Errorf("models: get exercise %d owners: %w", id, err)
	}
	return coachID, studentID, workoutID, nil
}

// DeleteExercise removes an exercise and its sections (CASCADE).
func DeleteExercise(db *sql.DB, actor Actor, id int64) error {
	coachID, studentID, _, err := exerciseOwners(db, id)
	if err != nil {
		return err
	}
	if !actor.canView(coachID, studentID) {
		return ErrNotFound
	}
	if !actor.canManage(coachID) {
		return ErrForbidden
	}

	result, err := db.Exec(`DELETE FROM exercises WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("models: delete exercise %d: %w", id, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
