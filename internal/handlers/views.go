package handlers

import "github.com/blocklift/blocklift/internal/models"

// View types shape model rows for JSON responses. Dates stay YYYY-MM-DD
// strings end to end.

type studentView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	CoachID  int64  `json:"coach_id,omitempty"`
}

func newStudentView(u *models.User) studentView {
	v := studentView{ID: u.ID, Username: u.Username, Name: u.Name}
	if u.Email.Valid {
		v.Email = u.Email.String
	}
	if u.CoachID.Valid {
		v.CoachID = u.CoachID.Int64
	}
	return v
}

type blockView struct {
	ID          int64      `json:"id"`
	StudentID   int64      `json:"student_id"`
	CoachID     int64      `json:"coach_id"`
	Title       string     `json:"title"`
	StartDate   string     `json:"start_date"`
	EndDate     string     `json:"end_date"`
	WeeksCount  int        `json:"weeks_count"`
	StudentName string     `json:"student_name,omitempty"`
	Weeks       []weekView `json:"weeks,omitempty"`
}

func newBlockView(b *models.Block) blockView {
	v := blockView{
		ID:          b.ID,
		StudentID:   b.StudentID,
		CoachID:     b.CoachID,
		Title:       b.Title,
		StartDate:   b.StartDate,
		EndDate:     b.EndDate,
		WeeksCount:  b.WeeksCount,
		StudentName: b.StudentName,
	}
	for _, w := range b.Weeks {
		v.Weeks = append(v.Weeks, newWeekView(w))
	}
	return v
}

type weekView struct {
	ID           int64  `json:"id"`
	BlockID      int64  `json:"block_id"`
	WeekNumber   int    `json:"week_number"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	WorkoutCount int    `json:"workout_count"`
}

func newWeekView(w *models.Week) weekView {
	return weekView{
		ID:           w.ID,
		BlockID:      w.BlockID,
		WeekNumber:   w.WeekNumber,
		StartDate:    w.StartDate,
		EndDate:      w.EndDate,
		WorkoutCount: w.WorkoutCount,
	}
}

type workoutView struct {
	ID              int64          `json:"id"`
	WeekID          int64          `json:"week_id"`
	StudentID       int64          `json:"student_id"`
	CoachID         int64          `json:"coach_id"`
	Name            string         `json:"name"`
	Day             string         `json:"day"`
	DurationMinutes *int64         `json:"duration_minutes,omitempty"`
	Description     string         `json:"description,omitempty"`
	Exercises       []exerciseView `json:"exercises"`
}

func newWorkoutView(w *models.Workout) workoutView {
	v := workoutView{
		ID:        w.ID,
		WeekID:    w.WeekID,
		StudentID: w.StudentID,
		CoachID:   w.CoachID,
		Name:      w.Name,
		Day:       w.Day,
		Exercises: []exerciseView{},
	}
	if w.DurationMinutes.Valid {
		v.DurationMinutes = &w.DurationMinutes.Int64
	}
	if w.Description.Valid {
		v.Description = w.Description.String
	}
	for _, e := range w.Exercises {
		v.Exercises = append(v.Exercises, newExerciseView(e))
	}
	return v
}

type exerciseView struct {
	ID       int64         `json:"id"`
	Name     string        `json:"name"`
	Sections []sectionView `json:"sections"`
}

func newExerciseView(e *models.Exercise) exerciseView {
	v := exerciseView{ID: e.ID, Name: e.Name, Sections: []sectionView{}}
	for _, s := range e.Sections {
		v.Sections = append(v.Sections, newSectionView(s))
	}
	return v
}

type sectionView struct {
	ID          int64    `json:"id"`
	Load        *float64 `json:"load,omitempty"`
	LoadUnit    string   `json:"load_unit"`
	Series      int      `json:"series"`
	Reps        *int64   `json:"reps,omitempty"`
	Equipment   string   `json:"equipment,omitempty"`
	RPE         *float64 `json:"rpe,omitempty"`
	EstimatedPR *float64 `json:"estimated_pr,omitempty"`
	Done        bool     `json:"done"`
}

func newSectionView(s *models.Section) sectionView {
	v := sectionView{ID: s.ID, LoadUnit: s.LoadUnit, Series: s.Series, Done: s.Done}
	if s.Load.Valid {
		v.Load = &s.Load.Float64
	}
	if s.Reps.Valid {
		v.Reps = &s.Reps.Int64
	}
	if s.Equipment.Valid {
		v.Equipment = s.Equipment.String
	}
	if s.RPE.Valid {
		v.RPE = &s.RPE.Float64
	}
	if s.EstimatedPR.Valid {
		v.EstimatedPR = &s.EstimatedPR.Float64
	}
	return v
}
