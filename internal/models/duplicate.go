package models

import (
	"database/sql"
	"fmt"
)

// DuplicateWeek copies every workout under the source week, with nested
// exercises and sections, into the target week. Every copied node gets a
// fresh id; all section values are preserved as-is, including done flags and
// estimated PRs. The target may belong to a different block or student.
// Workout days are shifted by the offset between the two weeks' start dates
// so they keep their position within the week.
func DuplicateWeek(db *sql.DB, actor Actor, sourceWeekID, targetWeekID int64) (int, error) {
	source, err := getWeekForView(db, actor, sourceWeekID)
	if err != nil {
		return 0, err
	}
	if !actor.canManage(source.CoachID) {
		return 0, ErrForbidden
	}
	target, err := getWeekForManage(db, actor, targetWeekID)
	if err != nil {
		return 0, err
	}

	workouts, err := ListWorkoutsByWeek(db, actor, sourceWeekID)
	if err != nil {
		return 0, err
	}

	offset := daysBetween(source.StartDate, target.StartDate)

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("models: begin duplicate week: %w", err)
	}
	defer tx.Rollback()

	for _, w := range workouts {
		day := addDays(w.Day, offset)
		if !dayInRange(day, target.StartDate, target.EndDate) {
			// Source day sat outside its own week; clamp to the target start.
			day = target.StartDate
		}
		if _, err := copyWorkoutSubtree(tx, w, target, w.Name, day); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("models: commit duplicate week: %w", err)
	}
	return len(workouts), nil
}

// DuplicateWorkout copies one workout's exercise/section subtree into the
// target week under a caller-supplied name and scheduled day.
func DuplicateWorkout(db *sql.DB, actor Actor, sourceWorkoutID, targetWeekID int64, newName, newDay string) (*Workout, error) {
	source, err := GetWorkoutTree(db, actor, sourceWorkoutID)
	if err != nil {
		return nil, err
	}
	if !actor.canManage(source.CoachID) {
		return nil, ErrForbidden
	}
	target, err := getWeekForManage(db, actor, targetWeekID)
	if err != nil {
		return nil, err
	}

	if newName == "" {
		return nil, validationf("workout name is required")
	}
	if _, err := parseDay(newDay); err != nil {
		return nil, validationf("day %q is not a valid YYYY-MM-DD date", newDay)
	}
	if !dayInRange(newDay, target.StartDate, target.EndDate) {
		return nil, validationf("day %s is outside week %d (%s to %s)",
			newDay, target.WeekNumber, target.StartDate, target.EndDate)
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("models: begin duplicate workout: %w", err)
	}
	defer tx.Rollback()

	newID, err := copyWorkoutSubtree(tx, source, target, newName, newDay)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("models: commit duplicate workout: %w", err)
	}
	return GetWorkoutTree(db, actor, newID)
}

// copyWorkoutSubtree inserts a copy of a loaded workout tree under the target
// week, regenerating every id. The student/coach references come from the
// target week's block.
func copyWorkoutSubtree(tx *sql.Tx, source *Workout, target *weekWithOwners, name, day string) (int64, error) {
	var workoutID int64
	err := tx.QueryRow(
		`INSERT INTO workouts (week_id, student_id, coach_id, name, day, duration_minutes, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		target.ID, target.StudentID, target.CoachID, name, day, source.DurationMinutes, source.Description,
	).Scan(&workoutID)
	if err != nil {
		return 0, fmt.Errorf("models: copy workout %d: %w", source.ID, err)
	}

	for _, e := range source.Exercises {
		var exerciseID int64
		err := tx.QueryRow(
			`INSERT INTO exercises (workout_id, name, position) VALUES (?, ?, ?) RETURNING id`,
			workoutID, e.Name, e.Position,
		).Scan(&exerciseID)
		if err != nil {
			return 0, fmt.Errorf("models: copy exercise %d: %w", e.ID, err)
		}

		for _, s := range e.Sections {
			_, err := tx.Exec(
				`INSERT INTO sections (exercise_id, position, load, load_unit, series, reps, equipment, rpe, estimated_pr, done)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				exerciseID, s.Position, s.Load, s.LoadUnit, s.Series, s.Reps, s.Equipment, s.RPE, s.EstimatedPR, s.Done,
			)
			if err != nil {
				return 0, fmt.Errorf("models: copy section %d: %w", s.ID, err)
			}
		}
	}
	return workoutID, nil
}
