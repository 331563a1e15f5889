package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Year bounds accepted for a block's start date.
const (
	minBlockYear = 2024
	maxBlockYear = 2100
)

// Block is a coaching macro-cycle for one student, tiled into 7-day weeks.
type Block struct {
	ID         int64
	StudentID  int64
	CoachID    int64
	Title      string
	StartDate  string // YYYY-MM-DD
	EndDate    string // YYYY-MM-DD
	WeeksCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Populated by GetBlock.
	Weeks []*Week
	// Populated by list queries.
	StudentName string
}

// CreateBlock creates a block for a student together with its weeks. The
// block spans [startDate, startDate+7*weeksCount-1] and the weeks tile that
// range contiguously with sequential week numbers starting at 1.
func CreateBlock(db *sql.DB, actor Actor, studentID int64, title, startDate string, weeksCount int) (*Block, error) {
	if !actor.isAdmin() && !actor.isCoach() {
		return nil, ErrForbidden
	}
	student, err := getStudentForActor(db, actor, studentID)
	if err != nil {
		return nil, err
	}

	if title == "" {
		return nil, validationf("title is required")
	}
	start, err := parseDay(startDate)
	if err != nil {
		return nil, validationf("start date %q is not a valid YYYY-MM-DD date", startDate)
	}
	if y := start.Year(); y < minBlockYear || y > maxBlockYear {
		return nil, validationf("start date year must be between %d and %d", minBlockYear, maxBlockYear)
	}
	if weeksCount < 1 {
		return nil, validationf("a block needs at least one week")
	}

	coachID := actor.ID
	if actor.isAdmin() {
		if !student.CoachID.Valid {
			return nil, validationf("student %q has no coach assigned", student.Username)
		}
		coachID = student.CoachID.Int64
	}

	endDate := addDays(startDate, weeksCount*7-1)

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("models: begin create block: %w", err)
	}
	defer tx.Rollback()

	var blockID int64
	err = tx.QueryRow(
		`INSERT INTO blocks (student_id, coach_id, title, start_date, end_date, weeks_count)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		studentID, coachID, title, startDate, endDate, weeksCount,
	).Scan(&blockID)
	if err != nil {
		return nil, fmt.Errorf("models: create block %q: %w", title, err)
	}

	if err := tileWeeks(tx, blockID, startDate, weeksCount); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("models: commit create block: %w", err)
	}
	return GetBlock(db, actor, blockID)
}

// tileWeeks inserts weeksCount weeks for a block, each exactly 7 days,
// contiguous and starting at startDate.
func tileWeeks(tx *sql.Tx, blockID int64, startDate string, weeksCount int) error {
	for n := 1; n <= weeksCount; n++ {
		weekStart := addDays(startDate, (n-1)*7)
		weekEnd := addDays(weekStart, 6)
		_, err := tx.Exec(
			`INSERT INTO weeks (block_id, week_number, start_date, end_date) VALUES (?, ?, ?, ?)`,
			blockID, n, weekStart, weekEnd,
		)
		if err != nil {
			return fmt.Errorf("models: tile week %d of block %d: %w", n, blockID, err)
		}
	}
	return nil
}

// getBlockRow loads a bare block row without visibility checks.
func getBlockRow(db *sql.DB, id int64) (*Block, error) {
	b := &Block{}
	err := db.QueryRow(
		`SELECT id, student_id, coach_id, title, start_date, end_date, weeks_count, created_at, updated_at
		 FROM blocks WHERE id = ?`, id,
	).Scan(&b.ID, &b.StudentID, &b.CoachID, &b.Title, &b.StartDate, &b.EndDate, &b.WeeksCount, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get block %d: %w", id, err)
	}
	return b, nil
}

// getBlockForView loads a block the actor may read.
func getBlockForView(db *sql.DB, actor Actor, id int64) (*Block, error) {
	b, err := getBlockRow(db, id)
	if err != nil {
		return nil, err
	}
	if !actor.canView(b.CoachID, b.StudentID) {
		return nil, ErrNotFound
	}
	return b, nil
}

// getBlockForManage loads a block the actor may mutate. The block's own
// student can see it but not change it.
func getBlockForManage(db *sql.DB, actor Actor, id int64) (*Block, error) {
	b, err := getBlockForView(db, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.canManage(b.CoachID) {
		return nil, ErrForbidden
	}
	return b, nil
}

// GetBlock retrieves a block with its weeks, ordered by week number.
func GetBlock(db *sql.DB, actor Actor, id int64) (*Block, error) {
	b, err := getBlockForView(db, actor, id)
	if err != nil {
		return nil, err
	}
	b.Weeks, err = listWeeks(db, b.ID)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBlocksForStudent returns a student's blocks, most recent first.
func ListBlocksForStudent(db *sql.DB, actor Actor, studentID int64) ([]*Block, error) {
	if actor.ID != studentID {
		if _, err := getStudentForActor(db, actor, studentID); err != nil {
			return nil, err
		}
	}

	rows, err := db.Query(`
		SELECT b.id, b.student_id, b.coach_id, b.title, b.start_date, b.end_date, b.weeks_count,
		       b.created_at, b.updated_at, u.name
		FROM blocks b
		JOIN users u ON u.id = b.student_id
		WHERE b.student_id = ?
		ORDER BY b.start_date DESC, b.id DESC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("models: list blocks for student %d: %w", studentID, err)
	}
	defer rows.Close()

	var blocks []*Block
	for rows.Next() {
		b := &Block{}
		if err := rows.Scan(&b.ID, &b.StudentID, &b.CoachID, &b.Title, &b.StartDate, &b.EndDate,
			&b.WeeksCount, &b.CreatedAt, &b.UpdatedAt, &b.StudentName); err != nil {
			return nil, fmt.Errorf("models: scan block: %w", err)
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// UpdateBlockParams carries the optional fields of a block update. Nil fields
// are left unchanged.
type UpdateBlockParams struct {
	Title      *string
	StartDate  *string
	WeeksCount *int
}

// UpdateBlock updates a block. Retitling is always allowed. Changing the
// start date or week count re-tiles the block's weeks, which is only
// permitted while no week has a workout; afterwards a resize is rejected
// rather than leaving stale week boundaries behind.
func UpdateBlock(db *sql.DB, actor Actor, id int64, params UpdateBlockParams) (*Block, error) {
	b, err := getBlockForManage(db, actor, id)
	if err != nil {
		return nil, err
	}

	title := b.Title
	if params.Title != nil {
		if *params.Title == "" {
			return nil, validationf("title is required")
		}
		title = *params.Title
	}

	startDate := b.StartDate
	if params.StartDate != nil {
		startDate = *params.StartDate
	}
	weeksCount := b.WeeksCount
	if params.WeeksCount != nil {
		weeksCount = *params.WeeksCount
	}

	retile := startDate != b.StartDate || weeksCount != b.WeeksCount
	if retile {
		start, err := parseDay(startDate)
		if err != nil {
			return nil, validationf("start date %q is not a valid YYYY-MM-DD date", startDate)
		}
		if y := start.Year(); y < minBlockYear || y > maxBlockYear {
			return nil, validationf("start date year must be between %d and %d", minBlockYear, maxBlockYear)
		}
		if weeksCount < 1 {
			return nil, validationf("a block needs at least one week")
		}

		var workouts int
		err = db.QueryRow(
			`SELECT COUNT(*) FROM workouts w JOIN weeks wk ON wk.id = w.week_id WHERE wk.block_id = ?`, id,
		).Scan(&workouts)
		if err != nil {
			return nil, fmt.Errorf("models: count workouts in block %d: %w", id, err)
		}
		if workouts > 0 {
			return nil, validationf("cannot change dates or length of a block that already has workouts")
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("models: begin update block: %w", err)
	}
	defer tx.Rollback()

	endDate := addDays(startDate, weeksCount*7-1)
	_, err = tx.Exec(
		`UPDATE blocks SET title = ?, start_date = ?, end_date = ?, weeks_count = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		title, startDate, endDate, weeksCount, id,
	)
	if err != nil {
		return nil, fmt.Errorf("models: update block %d: %w", id, err)
	}

	if retile {
		if _, err := tx.Exec(`DELETE FROM weeks WHERE block_id = ?`, id); err != nil {
			return nil, fmt.Errorf("models: clear weeks of block %d: %w", id, err)
		}
		if err := tileWeeks(tx, id, startDate, weeksCount); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("models: commit update block: %w", err)
	}
	return GetBlock(db, actor, id)
}

// DeleteBlock removes a block and all descendant weeks, workouts, exercises,
// and sections (CASCADE).
func DeleteBlock(db *sql.DB, actor Actor, id int64) error {
	if _, err := getBlockForManage(db, actor, id); err != nil {
		return err
	}
	result, err := db.Exec(`DELETE FROM blocks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("models: delete block %d: %w", id, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
