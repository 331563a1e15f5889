package models

import (
	"database/sql"
	"errors"
	"fmt"
)

// Week is a 7-day subdivision of a block, numbered sequentially from 1.
type Week struct {
	ID         int64
	BlockID    int64
	WeekNumber int
	StartDate  string // YYYY-MM-DD
	EndDate    string // YYYY-MM-DD

	// Populated by listWeeks.
	WorkoutCount int
}

// weekWithOwners carries a week together with its block's ownership columns
// for visibility checks.
type weekWithOwners struct {
	Week
	CoachID   int64
	StudentID int64
}

func getWeekRow(db *sql.DB, id int64) (*weekWithOwners, error) {
	w := &weekWithOwners{}
	err := db.QueryRow(
		`SELECT wk.id, wk.block_id, wk.week_number, wk.start_date, wk.end_date, b.coach_id, b.student_id
		 FROM weeks wk
		 JOIN blocks b ON b.id = wk.block_id
		 WHERE wk.id = ?`, id,
	).Scan(&w.ID, &w.BlockID, &w.WeekNumber, &w.StartDate, &w.EndDate, &w.CoachID, &w.StudentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get week %d: %w", id, err)
	}
	return w, nil
}

// getWeekForView loads a week visible to the actor.
func getWeekForView(db *sql.DB, actor Actor, id int64) (*weekWithOwners, error) {
	w, err := getWeekRow(db, id)
	if err != nil {
		return nil, err
	}
	if !actor.canView(w.CoachID, w.StudentID) {
		return nil, ErrNotFound
	}
	return w, nil
}

// getWeekForManage loads a week the actor may mutate.
func getWeekForManage(db *sql.DB, actor Actor, id int64) (*weekWithOwners, error) {
	w, err := getWeekForView(db, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.canManage(w.CoachID) {
		return nil, ErrForbidden
	}
	return w, nil
}

// listWeeks returns a block's weeks ordered by week number, with workout
// counts for summary views.
func listWeeks(db *sql.DB, blockID int64) ([]*Week, error) {
	rows, err := db.Query(`
		SELECT wk.id, wk.block_id, wk.week_number, wk.start_date, wk.end_date,
		       (SELECT COUNT(*) FROM workouts w WHERE w.week_id = wk.id)
		FROM weeks wk
		WHERE wk.block_id = ?
		ORDER BY wk.week_number`, blockID)
	if err != nil {
		return nil, fmt.Errorf("models: list weeks of block %d: %w", blockID, err)
	}
	defer rows.Close()

	var weeks []*Week
	for rows.Next() {
		w := &Week{}
		if err := rows.Scan(&w.ID, &w.BlockID, &w.WeekNumber, &w.StartDate, &w.EndDate, &w.WorkoutCount); err != nil {
			return nil, fmt.Errorf("models: scan week: %w", err)
		}
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}
