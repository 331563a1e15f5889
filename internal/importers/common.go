// Package importers parses uploaded spreadsheets into draft block-week trees
// for the import reconcile flow. Drafts carry no persisted ids; they are
// edited client-side and committed through the models layer.
package importers

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// MaxUploadFiles is the most spreadsheets accepted in one import batch.
const MaxUploadFiles = 5

// ParsedBlockWeek is the draft produced from one uploaded file: a guessed
// title, the week number the file declares, and the workouts it describes.
type ParsedBlockWeek struct {
	DraftID    string         `json:"draft_id"`
	SourceFile string         `json:"source_file"`
	Title      string         `json:"title"`
	WeekNumber int            `json:"week_number"`
	Workouts   []DraftWorkout `json:"workouts"`
}

// DraftWorkout is one workout in a draft. Day is assigned during review and
// must fall within the matched week's range before commit. Destroy marks the
// node for exclusion.
type DraftWorkout struct {
	Name            string          `json:"name"`
	Day             string          `json:"day,omitempty"`
	DurationMinutes *int            `json:"duration_minutes,omitempty"`
	Description     *string         `json:"description,omitempty"`
	Destroy         bool            `json:"destroy,omitempty"`
	Exercises       []DraftExercise `json:"exercises"`
}

// DraftExercise is one exercise in a draft workout.
type DraftExercise struct {
	Name     string         `json:"name"`
	Destroy  bool           `json:"destroy,omitempty"`
	Sections []DraftSection `json:"sections"`
}

// DraftSection is one prescribed set in a draft exercise.
type DraftSection struct {
	Load      *float64 `json:"load,omitempty"`
	LoadUnit  string   `json:"load_unit,omitempty"`
	Series    int      `json:"series"`
	Reps      *int     `json:"reps,omitempty"`
	Equipment *string  `json:"equipment,omitempty"`
	RPE       *float64 `json:"rpe,omitempty"`
	Done      bool     `json:"done,omitempty"`
	Destroy   bool     `json:"destroy,omitempty"`
}

// Upload is one file submitted for import.
type Upload struct {
	Name string
	Data []byte
}

// FileError records a per-file parse failure. Failures do not abort the
// batch; the caller gets every draft that did parse plus this list.
type FileError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// ParseUploads parses each uploaded file into a draft. Parse failures are
// collected per file rather than failing the batch.
func ParseUploads(uploads []Upload) ([]*ParsedBlockWeek, []FileError) {
	var drafts []*ParsedBlockWeek
	var failures []FileError

	for _, up := range uploads {
		var draft *ParsedBlockWeek
		var err error
		if isXLSX(up) {
			draft, err = ParseXLSX(up.Name, up.Data)
		} else {
			draft, err = ParseCSV(up.Name, up.Data)
		}
		if err != nil {
			failures = append(failures, FileError{File: up.Name, Error: err.Error()})
			continue
		}
		drafts = append(drafts, draft)
	}
	return drafts, failures
}

// isXLSX sniffs the xlsx container (a zip archive) by extension or magic
// bytes; everything else is treated as CSV.
func isXLSX(up Upload) bool {
	if strings.HasSuffix(strings.ToLower(up.Name), ".xlsx") {
		return true
	}
	return len(up.Data) >= 4 && up.Data[0] == 'P' && up.Data[1] == 'K' && up.Data[2] == 0x03 && up.Data[3] == 0x04
}

var weekInName = regexp.MustCompile(`(?i)week[ _-]?(\d+)`)

// newDraft builds an empty draft for a source file, guessing the title from
// the filename and, when possible, the week number from a "week N" token in
// it. A week number in the sheet itself takes precedence.
func newDraft(sourceFile string) *ParsedBlockWeek {
	title := sourceFile
	if i := strings.LastIndex(title, "."); i > 0 {
		title = title[:i]
	}
	title = strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(title))

	draft := &ParsedBlockWeek{
		DraftID:    uuid.NewString(),
		SourceFile: sourceFile,
		Title:      title,
	}
	if m := weekInName.FindStringSubmatch(sourceFile); m != nil {
		draft.WeekNumber, _ = strconv.Atoi(m[1])
	}
	return draft
}
