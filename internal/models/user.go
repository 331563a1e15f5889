package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Roles recognized by the system.
const (
	RoleAdmin   = "admin"
	RoleCoach   = "coach"
	RoleStudent = "student"
)

// User represents a login account: an admin, a coach, or a student.
// Students carry a reference to their coach.
type User struct {
	ID           int64
	Username     string
	Name         string
	Email        sql.NullString
	PasswordHash string
	Role         string
	CoachID      sql.NullInt64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor identifies who is performing a core operation. Every mutating
// operation takes an explicit Actor and enforces ownership itself, so the
// model layer is testable without a web server or ambient session state.
type Actor struct {
	ID   int64
	Role string
}

// Actor derives the acting identity from a loaded user.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

func (a Actor) isAdmin() bool { return a.Role == RoleAdmin }
func (a Actor) isCoach() bool { return a.Role == RoleCoach }

// canManage reports whether the actor may mutate plan data owned by the
// given coach.
func (a Actor) canManage(coachID int64) bool {
	return a.isAdmin() || (a.isCoach() && a.ID == coachID)
}

// canView reports whether the actor may read plan data owned by the given
// coach/student pair.
func (a Actor) canView(coachID, studentID int64) bool {
	return a.canManage(coachID) || a.ID == studentID
}

// HashPassword generates a bcrypt hash of the given plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("models: hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CreateUser inserts a new account. Returns ErrDuplicateUsername if the
// username is already taken. coachID is required for students and ignored
// for other roles.
func CreateUser(db *sql.DB, username, name, password, email, role string, coachID sql.NullInt64) (*User, error) {
	if role != RoleAdmin && role != RoleCoach && role != RoleStudent {
		return nil, validationf("unknown role %q", role)
	}
	if username == "" || password == "" {
		return nil, validationf("username and password are required")
	}
	if role != RoleStudent {
		coachID = sql.NullInt64{}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	var emailVal sql.NullString
	if email != "" {
		emailVal = sql.NullString{String: email, Valid: true}
	}

	result, err := db.Exec(
		`INSERT INTO users (username, name, email, password_hash, role, coach_id) VALUES (?, ?, ?, ?, ?, ?)`,
		username, name, emailVal, hash, role, coachID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("models: create user %q: %w", username, err)
	}

	id, _ := result.LastInsertId()
	return GetUserByID(db, id)
}

// GetUserByID retrieves a user by primary key.
func GetUserByID(db *sql.DB, id int64) (*User, error) {
	u := &User{}
	err := db.QueryRow(
		`SELECT id, username, name, email, password_hash, role, coach_id, created_at, updated_at
		 FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CoachID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get user %d: %w", id, err)
	}
	return u, nil
}

// GetUserByUsername retrieves a user by username (case-insensitive).
func GetUserByUsername(db *sql.DB, username string) (*User, error) {
	u := &User{}
	err := db.QueryRow(
		`SELECT id, username, name, email, password_hash, role, coach_id, created_at, updated_at
		 FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CoachID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get user by username %q: %w", username, err)
	}
	return u, nil
}

// Authenticate verifies a username/password combination and returns the user
// if valid, or ErrNotFound if the credentials are wrong.
func Authenticate(db *sql.DB, username, password string) (*User, error) {
	u, err := GetUserByUsername(db, username)
	if err != nil {
		return nil, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrNotFound
	}
	return u, nil
}

// CountUsers returns the total number of accounts.
func CountUsers(db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("models: count users: %w", err)
	}
	return count, nil
}

// getStudentForActor loads a student visible to the actor: admins see every
// student, coaches only their own. Returns ErrNotFound otherwise.
func getStudentForActor(db *sql.DB, actor Actor, studentID int64) (*User, error) {
	u, err := GetUserByID(db, studentID)
	if err != nil {
		return nil, err
	}
	if u.Role != RoleStudent {
		return nil, ErrNotFound
	}
	if !actor.isAdmin() {
		if !actor.isCoach() || !u.CoachID.Valid || u.CoachID.Int64 != actor.ID {
			return nil, ErrNotFound
		}
	}
	return u, nil
}

// ListStudents returns the students visible to the actor, ordered by name.
// Coaches see their own students; admins see all.
func ListStudents(db *sql.DB, actor Actor) ([]*User, error) {
	query := `SELECT id, username, name, email, password_hash, role, coach_id, created_at, updated_at
	          FROM users WHERE role = 'student'`
	args := []any{}
	if !actor.isAdmin() {
		if !actor.isCoach() {
			return nil, ErrForbidden
		}
		query += ` AND coach_id = ?`
		args = append(args, actor.ID)
	}
	query += ` ORDER BY name COLLATE NOCASE, username COLLATE NOCASE`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("models: list students: %w", err)
	}
	defer rows.Close()

	var students []*User
	for rows.Next() {
		u := &User{}
		if err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CoachID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("models: scan student: %w", err)
		}
		students = append(students, u)
	}
	return students, rows.Err()
}

// CreateStudent creates a student account owned by the acting coach. Admins
// must name the owning coach explicitly.
func CreateStudent(db *sql.DB, actor Actor, username, name, password, email string, coachID int64) (*User, error) {
	switch {
	case actor.isCoach():
		coachID = actor.ID
	case actor.isAdmin():
		if coachID == 0 {
			return nil, validationf("coach id is required when an admin creates a student")
		}
	default:
		return nil, ErrForbidden
	}
	return CreateUser(db, username, name, password, email, RoleStudent, sql.NullInt64{Int64: coachID, Valid: true})
}

// DeleteUser removes an account. Coaches may delete their own students;
// admins may delete anyone. Plan data cascades.
func DeleteUser(db *sql.DB, actor Actor, id int64) error {
	if !actor.isAdmin() {
		if _, err := getStudentForActor(db, actor, id); err != nil {
			return err
		}
	}
	result, err := db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("models: delete user %d: %w", id, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
