package models

import (
	"database/sql"
	"fmt"

	"github.com/blocklift/blocklift/internal/importers"
)

// DraftValidation is the result of checking one draft against the target
// block: whether a week with the declared number exists and, if so, its date
// range for client-side date bounding.
type DraftValidation struct {
	DraftID          string `json:"draft_id"`
	Title            string `json:"title"`
	WeekNumber       int    `json:"week_number"`
	TargetWeekExists bool   `json:"target_week_exists"`
	WeekID           int64  `json:"week_id,omitempty"`
	WeekStart        string `json:"week_start,omitempty"`
	WeekEnd          string `json:"week_end,omitempty"`
}

// ImportResult summarizes a committed import batch.
type ImportResult struct {
	WorkoutsCreated  int `json:"workouts_created"`
	ExercisesCreated int `json:"exercises_created"`
	SectionsCreated  int `json:"sections_created"`
}

// ValidateDrafts matches each draft's declared week number against the
// target block's weeks (by number, not position). Drafts without a match are
// flagged non-committable; matched drafts get the week's date range attached.
func ValidateDrafts(db *sql.DB, actor Actor, blockID int64, drafts []*importers.ParsedBlockWeek) ([]*DraftValidation, error) {
	block, err := getBlockForManage(db, actor, blockID)
	if err != nil {
		return nil, err
	}
	weeks, err := listWeeks(db, block.ID)
	if err != nil {
		return nil, err
	}
	byNumber := make(map[int]*Week, len(weeks))
	for _, w := range weeks {
		byNumber[w.WeekNumber] = w
	}

	validations := make([]*DraftValidation, 0, len(drafts))
	for _, d := range drafts {
		v := &DraftValidation{
			DraftID:    d.DraftID,
			Title:      d.Title,
			WeekNumber: d.WeekNumber,
		}
		if w, ok := byNumber[d.WeekNumber]; ok {
			v.TargetWeekExists = true
			v.WeekID = w.ID
			v.WeekStart = w.StartDate
			v.WeekEnd = w.EndDate
		}
		validations = append(validations, v)
	}
	return validations, nil
}

// CommitImport writes the reviewed drafts into the target block in one
// transaction. Destroy-marked nodes are filtered out first. The commit fails
// before any write if a draft's declared week has no match in the block, or
// if a remaining workout is missing a day or scheduled outside its week.
// Any write failure rolls the whole batch back.
func CommitImport(db *sql.DB, actor Actor, blockID int64, drafts []*importers.ParsedBlockWeek) (*ImportResult, error) {
	block, err := getBlockForManage(db, actor, blockID)
	if err != nil {
		return nil, err
	}
	weeks, err := listWeeks(db, block.ID)
	if err != nil {
		return nil, err
	}
	byNumber := make(map[int]*Week, len(weeks))
	for _, w := range weeks {
		byNumber[w.WeekNumber] = w
	}

	// Validate everything up front so nothing is written on failure.
	for _, d := range drafts {
		week, ok := byNumber[d.WeekNumber]
		if !ok {
			return nil, validationf("draft %q declares week %d, which does not exist in block %q",
				d.Title, d.WeekNumber, block.Title)
		}
		for _, dw := range d.Workouts {
			if dw.Destroy {
				continue
			}
			if dw.Name == "" {
				return nil, validationf("draft %q has a workout without a name", d.Title)
			}
			if dw.Day == "" {
				return nil, validationf("workout %q in draft %q has no scheduled day", dw.Name, d.Title)
			}
			if _, err := parseDay(dw.Day); err != nil {
				return nil, validationf("workout %q in draft %q: day %q is not a valid YYYY-MM-DD date",
					dw.Name, d.Title, dw.Day)
			}
			if !dayInRange(dw.Day, week.StartDate, week.EndDate) {
				return nil, validationf("workout %q in draft %q: day %s is outside week %d (%s to %s)",
					dw.Name, d.Title, dw.Day, week.WeekNumber, week.StartDate, week.EndDate)
			}
			for _, de := range dw.Exercises {
				if de.Destroy {
					continue
				}
				if de.Name == "" {
					return nil, validationf("workout %q in draft %q has an exercise without a name", dw.Name, d.Title)
				}
				for _, ds := range de.Sections {
					if ds.Destroy {
						continue
					}
					if _, err := validateLoadUnit(ds.LoadUnit); err != nil {
						return nil, err
					}
					if ds.Series < 1 {
						return nil, validationf("exercise %q in draft %q has a set with series below 1", de.Name, d.Title)
					}
				}
			}
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("models: begin import commit: %w", err)
	}
	defer tx.Rollback()

	result := &ImportResult{}
	for _, d := range drafts {
		week := byNumber[d.WeekNumber]
		for _, dw := range d.Workouts {
			if dw.Destroy {
				continue
			}

			var workoutID int64
			err := tx.QueryRow(
				`INSERT INTO workouts (week_id, student_id, coach_id, name, day, duration_minutes, description)
				 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
				week.ID, block.StudentID, block.CoachID, dw.Name, dw.Day,
				nullInt(dw.DurationMinutes), nullString(dw.Description),
			).Scan(&workoutID)
			if err != nil {
				return nil, fmt.Errorf("models: import workout %q: %w", dw.Name, err)
			}
			result.WorkoutsCreated++

			position := 0
			for _, de := range dw.Exercises {
				if de.Destroy {
					continue
				}
				var exerciseID int64
				err := tx.QueryRow(
					`INSERT INTO exercises (workout_id, name, position) VALUES (?, ?, ?) RETURNING id`,
					workoutID, de.Name, position,
				).Scan(&exerciseID)
				if err != nil {
					return nil, fmt.Errorf("models: import exercise %q: %w", de.Name, err)
				}
				position++
				result.ExercisesCreated++

				sectionPos := 0
				for _, ds := range de.Sections {
					if ds.Destroy {
						continue
					}
					unit, _ := validateLoadUnit(ds.LoadUnit)
					pr := sectionPR(ds.Load, ds.Reps, ds.RPE, unit)
					_, err := tx.Exec(
						`INSERT INTO sections (exercise_id, position, load, load_unit, series, reps, equipment, rpe, estimated_pr, done)
						 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
						exerciseID, sectionPos, nullFloat(ds.Load), unit, ds.Series, nullInt(ds.Reps),
						nullString(ds.Equipment), nullFloat(ds.RPE), pr, ds.Done,
					)
					if err != nil {
						return nil, fmt.Errorf("models: import section: %w", err)
					}
					sectionPos++
					result.SectionsCreated++
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("models: commit import: %w", err)
	}
	return result, nil
}
