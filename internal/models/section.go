package models

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/blocklift/blocklift/internal/onerm"
)

// Load units accepted for a section. LoadUnitRIR marks a load expressed as
// reps-in-reserve instead of weight; no PR can be estimated from it.
const (
	LoadUnitKg  = "kg"
	LoadUnitLbs = "lbs"
	LoadUnitRIR = "rir"
)

// Section is one prescribed or logged set of an exercise (the source term
// for what lifters call a set).
type Section struct {
	ID          int64
	ExerciseID  int64
	Position    int
	Load        sql.NullFloat64
	LoadUnit    string
	Series      int
	Reps        sql.NullInt64
	Equipment   sql.NullString
	RPE         sql.NullFloat64
	EstimatedPR sql.NullFloat64
	Done        bool
}

// SectionParams carries the mutable fields of a section.
type SectionParams struct {
	Load      *float64
	LoadUnit  string
	Series    int
	Reps      *int
	Equipment *string
	RPE       *float64
	Done      bool
}

func validateLoadUnit(unit string) (string, error) {
	switch unit {
	case "":
		return LoadUnitKg, nil
	case LoadUnitKg, LoadUnitLbs, LoadUnitRIR:
		return unit, nil
	default:
		return "", validationf("unknown load unit %q", unit)
	}
}

// sectionPR derives the stored estimated PR for a section. It is nil unless
// load, reps, and RPE are all present and the load is an actual weight.
func sectionPR(load *float64, reps *int, rpe *float64, unit string) sql.NullFloat64 {
	if unit == LoadUnitRIR || load == nil || reps == nil || rpe == nil {
		return sql.NullFloat64{}
	}
	est, ok := onerm.Estimate(*load, float64(*reps), *rpe)
	if !ok {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: est, Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil || *v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

// sectionOwners resolves the coach/student owning a section via its workout.
func sectionOwners(db *sql.DB, id int64) (coachID, studentID int64, err error) {
	err = db.QueryRow(
		`SELECT w.coach_id, w.student_id
		 FROM sections s
		 JOIN exercises e ON e.id = s.exercise_id
		 JOIN workouts w ON w.id = e.workout_id
		 WHERE s.id = ?`, id,
	).Scan(&coachID, &studentID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, ErrNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("models: get section %d owners: %w", id, err)
	}
	return coachID, studentID, nil
}

// GetSectionByID retrieves a section visible to the actor.
func GetSectionByID(db *sql.DB, actor Actor, id int64) (*Section, error) {
	coachID, studentID, err := sectionOwners(db, id)
	if err != nil {
		return nil, err
	}
	if !actor.canView(coachID, studentID) {
		return nil, ErrNotFound
	}

	s := &Section{}
	err = db.QueryRow(
		`SELECT id, exercise_id, position, load, load_unit, series, reps, equipment, rpe, estimated_pr, done
		 FROM sections WHERE id = ?`, id,
	).Scan(&s.ID, &s.ExerciseID, &s.Position, &s.Load, &s.LoadUnit, &s.Series, &s.Reps,
		&s.Equipment, &s.RPE, &s.EstimatedPR, &s.Done)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get section %d: %w", id, err)
	}
	return s, nil
}

// UpdateSection updates a section's logged fields and refreshes its
// estimated PR. Both the coach (prescribing) and the workout's student
// (logging actuals) may edit; last write wins.
func UpdateSection(db *sql.DB, actor Actor, id int64, params SectionParams) (*Section, error) {
	coachID, studentID, err := sectionOwners(db, id)
	if err != nil {
		return nil, err
	}
	if !actor.canView(coachID, studentID) {
		return nil, ErrNotFound
	}

	if err := applySectionUpdate(db, id, params); err != nil {
		return nil, err
	}
	return GetSectionByID(db, actor, id)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func applySectionUpdate(q execer, id int64, params SectionParams) error {
	unit, err := validateLoadUnit(params.LoadUnit)
	if err != nil {
		return err
	}
	if params.Series < 1 {
		return validationf("series count must be at least 1")
	}

	pr := sectionPR(params.Load, params.Reps, params.RPE, unit)

	result, err := q.Exec(
		`UPDATE sections SET load = ?, load_unit = ?, series = ?, reps = ?, equipment = ?, rpe = ?,
		        estimated_pr = ?, done = ?
		 WHERE id = ?`,
		nullFloat(params.Load), unit, params.Series, nullInt(params.Reps), nullString(params.Equipment),
		nullFloat(params.RPE), pr, params.Done, id,
	)
	if err != nil {
		return fmt.Errorf("models: update section %d: %w", id, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SectionUpdate pairs a section id with its new field values for batch saves.
type SectionUpdate struct {
	ID     int64
	Params SectionParams
}

// UpdateSections applies a batch of section edits in one transaction — the
// "save changes" action that flushes all dirty sets at once. All edits
// succeed or none do.
func UpdateSections(db *sql.DB, actor Actor, updates []SectionUpdate) ([]*Section, error) {
	if len(updates) == 0 {
		return nil, validationf("no section updates supplied")
	}

	// Visibility checks before opening the write transaction.
	for _, u := range updates {
		coachID, studentID, err := sectionOwners(db, u.ID)
		if err != nil {
			return nil, err
		}
		if !actor.canView(coachID, studentID) {
			return nil, ErrNotFound
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("models: begin section batch: %w", err)
	}
	defer tx.Rollback()

	for _, u := range updates {
		if err := applySectionUpdate(tx, u.ID, u.Params); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("models: commit section batch: %w", err)
	}

	sections := make([]*Section, 0, len(updates))
	for _, u := range updates {
		s, err := GetSectionByID(db, actor, u.ID)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, nil
}

// DeleteSection removes a single section. Only the coach (or an admin) may
// remove prescribed sets.
func DeleteSection(db *sql.DB, actor Actor, id int64) error {
	coachID, studentID, err := sectionOwners(db, id)
	if err != nil {
		return err
	}
	if !actor.canView(coachID, studentID) {
		return ErrNotFound
	}
	if !actor.canManage(coachID) {
		return ErrForbidden
	}

	result, err := db.Exec(`DELETE FROM sections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("models: delete section %d: %w", id, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
