package models

import (
	"database/sql"
	"errors"
	"fmt"
)

// WorkoutTreeParams is the payload for creating or updating a workout
// together with its nested exercises and sections. Child nodes carry either
// an existing id (update in place) or none (insert), plus an optional
// destroy marker that removes the node and its descendants. The whole tree
// is applied in a single transaction.
type WorkoutTreeParams struct {
	WeekID          int64 // required on create, ignored on update
	Name            string
	Day             string // YYYY-MM-DD, must fall within the week's range
	DurationMinutes *int
	Description     *string
	Exercises       []ExerciseNode
}

// ExerciseNode is one exercise in a workout tree payload.
type ExerciseNode struct {
	ID       int64
	Destroy  bool
	Name     string
	Sections []SectionNode
}

// SectionNode is one section in a workout tree payload.
type SectionNode struct {
	ID      int64
	Destroy bool
	SectionParams
}

// SaveWorkoutTree creates (workoutID == 0) or updates a workout with its
// nested exercises and sections. A partial failure rolls the whole tree
// back.
func SaveWorkoutTree(db *sql.DB, actor Actor, workoutID int64, params WorkoutTreeParams) (*Workout, error) {
	var week *weekWithOwners
	var err error

	if workoutID == 0 {
		week, err = getWeekForManage(db, actor, params.WeekID)
	} else {
		var w *Workout
		w, err = getWorkoutForManage(db, actor, workoutID)
		if err == nil {
			week, err = getWeekRow(db, w.WeekID)
		}
	}
	if err != nil {
		return nil, err
	}

	if params.Name == "" {
		return nil, validationf("workout name is required")
	}
	if _, err := parseDay(params.Day); err != nil {
		return nil, validationf("day %q is not a valid YYYY-MM-DD date", params.Day)
	}
	if !dayInRange(params.Day, week.StartDate, week.EndDate) {
		return nil, validationf("day %s is outside week %d (%s to %s)",
			params.Day, week.WeekNumber, week.StartDate, week.EndDate)
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("models: begin workout tree save: %w", err)
	}
	defer tx.Rollback()

	if workoutID == 0 {
		err = tx.QueryRow(
			`INSERT INTO workouts (week_id, student_id, coach_id, name, day, duration_minutes, description)
			 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
			week.ID, week.StudentID, week.CoachID, params.Name, params.Day,
			nullInt(params.DurationMinutes), nullString(params.Description),
		).Scan(&workoutID)
		if err != nil {
			return nil, fmt.Errorf("models: create workout %q: %w", params.Name, err)
		}
	} else {
		_, err = tx.Exec(
			`UPDATE workouts SET name = ?, day = ?, duration_minutes = ?, description = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ?`,
			params.Name, params.Day, nullInt(params.DurationMinutes), nullString(params.Description), workoutID,
		)
		if err != nil {
			return nil, fmt.Errorf("models: update workout %d: %w", workoutID, err)
		}
	}

	if err := reconcileExercises(tx, workoutID, params.Exercises); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("models: commit workout tree save: %w", err)
	}
	return GetWorkoutTree(db, actor, workoutID)
}

// reconcileExercises applies the exercise nodes of a tree payload against the
// stored children of a workout: insert, update, or destroy per node.
func reconcileExercises(tx *sql.Tx, workoutID int64, nodes []ExerciseNode) error {
	position := 0
	for _, node := range nodes {
		if node.Destroy {
			if node.ID == 0 {
				continue // destroying a node that was never persisted is a no-op
			}
			if err := deleteChildRow(tx, "exercises", "workout_id", node.ID, workoutID); err != nil {
				return err
			}
			continue
		}

		if node.Name == "" {
			return validationf("exercise name is required")
		}

		exerciseID := node.ID
		if exerciseID == 0 {
			err := tx.QueryRow(
				`INSERT INTO exercises (workout_id, name, position) VALUES (?, ?, ?) RETURNING id`,
				workoutID, node.Name, position,
			).Scan(&exerciseID)
			if err != nil {
				return fmt.Errorf("models: insert exercise %q: %w", node.Name, err)
			}
		} else {
			if err := updateChildRow(tx,
				`UPDATE exercises SET name = ?, position = ? WHERE id = ? AND workout_id = ?`,
				node.Name, position, exerciseID, workoutID); err != nil {
				return err
			}
		}
		position++

		if err := reconcileSections(tx, exerciseID, node.Sections); err != nil {
			return err
		}
	}
	return nil
}

// reconcileSections applies the section nodes of a tree payload against one
// exercise's stored sections.
func reconcileSections(tx *sql.Tx, exerciseID int64, nodes []SectionNode) error {
	position := 0
	for _, node := range nodes {
		if node.Destroy {
			if node.ID == 0 {
				continue
			}
			if err := deleteChildRow(tx, "sections", "exercise_id", node.ID, exerciseID); err != nil {
				return err
			}
			continue
		}

		unit, err := validateLoadUnit(node.LoadUnit)
		if err != nil {
			return err
		}
		if node.Series < 1 {
			return validationf("series count must be at least 1")
		}
		pr := sectionPR(node.Load, node.Reps, node.RPE, unit)

		if node.ID == 0 {
			_, err := tx.Exec(
				`INSERT INTO sections (exercise_id, position, load, load_unit, series, reps, equipment, rpe, estimated_pr, done)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				exerciseID, position, nullFloat(node.Load), unit, node.Series, nullInt(node.Reps),
				nullString(node.Equipment), nullFloat(node.RPE), pr, node.Done,
			)
			if err != nil {
				return fmt.Errorf("models: insert section: %w", err)
			}
		} else {
			if err := updateChildRow(tx,
				`UPDATE sections SET position = ?, load = ?, load_unit = ?, series = ?, reps = ?, equipment = ?, rpe = ?, estimated_pr = ?, done = ?
				 WHERE id = ? AND exercise_id = ?`,
				position, nullFloat(node.Load), unit, node.Series, nullInt(node.Reps),
				nullString(node.Equipment), nullFloat(node.RPE), pr, node.Done,
				node.ID, exerciseID); err != nil {
				return err
			}
		}
		position++
	}
	return nil
}

// deleteChildRow deletes a child row scoped to its parent; an id that does
// not belong to the parent reads as missing.
func deleteChildRow(tx *sql.Tx, table, parentCol string, id, parentID int64) error {
	result, err := tx.Exec(
		fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND %s = ?`, table, parentCol), id, parentID)
	if err != nil {
		return fmt.Errorf("models: delete from %s: %w", table, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// updateChildRow runs a parent-scoped UPDATE and maps zero affected rows to
// ErrNotFound.
func updateChildRow(tx *sql.Tx, query string, args ...any) error {
	result, err := tx.Exec(query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("models: update child row: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
