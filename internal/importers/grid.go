package importers

import (
	"fmt"
	"strconv"
	"strings"
)

// Spreadsheet columns. Week, Workout, and Exercise are required; one row
// describes one prescribed set.
const (
	colWeek      = "Week"
	colWorkout   = "Workout"
	colDay       = "Day"
	colExercise  = "Exercise"
	colSets      = "Sets"
	colReps      = "Reps"
	colLoad      = "Load"
	colUnit      = "Unit"
	colRPE       = "RPE"
	colEquipment = "Equipment"
)

// parseGrid converts a row grid (from CSV or an xlsx sheet) into a draft.
// Rows sharing a Workout value group into one workout; within a workout,
// consecutive rows sharing an Exercise value group into one exercise.
func parseGrid(sourceFile string, rows [][]string) (*ParsedBlockWeek, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("importers: %s has no data rows", sourceFile)
	}

	idx := make(map[string]int)
	for i, col := range rows[0] {
		idx[strings.TrimSpace(col)] = i
	}
	for _, required := range []string{colWorkout, colExercise} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("importers: %s is missing required column %q", sourceFile, required)
		}
	}

	draft := newDraft(sourceFile)

	workoutByName := make(map[string]*DraftWorkout)
	var workoutOrder []string
	sheetDeclaredWeek := false

	for rowNum, row := range rows[1:] {
		workoutName := cell(row, idx, colWorkout)
		exerciseName := cell(row, idx, colExercise)
		if workoutName == "" || exerciseName == "" {
			continue
		}

		// The declared week number: the sheet's first non-empty value wins,
		// overriding any guess taken from the filename.
		if v := cell(row, idx, colWeek); v != "" && !sheetDeclaredWeek {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("importers: %s row %d: week %q is not a number", sourceFile, rowNum+2, v)
			}
			draft.WeekNumber = n
			sheetDeclaredWeek = true
		}

		dw, ok := workoutByName[workoutName]
		if !ok {
			dw = &DraftWorkout{Name: workoutName}
			if v := cell(row, idx, colDay); v != "" {
				dw.Day = v
			}
			workoutByName[workoutName] = dw
			workoutOrder = append(workoutOrder, workoutName)
		}

		section, err := parseSectionCells(sourceFile, rowNum+2, row, idx)
		if err != nil {
			return nil, err
		}

		// Append to the last exercise of this workout when the name matches,
		// otherwise start a new one.
		if n := len(dw.Exercises); n > 0 && dw.Exercises[n-1].Name == exerciseName {
			dw.Exercises[n-1].Sections = append(dw.Exercises[n-1].Sections, section)
		} else {
			dw.Exercises = append(dw.Exercises, DraftExercise{
				Name:     exerciseName,
				Sections: []DraftSection{section},
			})
		}
	}

	if len(workoutOrder) == 0 {
		return nil, fmt.Errorf("importers: %s has no workout rows", sourceFile)
	}
	if draft.WeekNumber == 0 {
		return nil, fmt.Errorf("importers: %s does not declare a week number", sourceFile)
	}

	for _, name := range workoutOrder {
		draft.Workouts = append(draft.Workouts, *workoutByName[name])
	}
	return draft, nil
}

// parseSectionCells reads one row's set prescription.
func parseSectionCells(sourceFile string, rowNum int, row []string, idx map[string]int) (DraftSection, error) {
	section := DraftSection{Series: 1}

	if v := cell(row, idx, colSets); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return section, fmt.Errorf("importers: %s row %d: sets %q is not a positive number", sourceFile, rowNum, v)
		}
		section.Series = n
	}
	if v := cell(row, idx, colReps); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return section, fmt.Errorf("importers: %s row %d: reps %q is not a number", sourceFile, rowNum, v)
		}
		section.Reps = &n
	}
	if v := cell(row, idx, colLoad); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return section, fmt.Errorf("importers: %s row %d: load %q is not a number", sourceFile, rowNum, v)
		}
		section.Load = &f
	}
	if v := cell(row, idx, colUnit); v != "" {
		unit, ok := normalizeUnit(v)
		if !ok {
			return section, fmt.Errorf("importers: %s row %d: unknown unit %q", sourceFile, rowNum, v)
		}
		section.LoadUnit = unit
	}
	if v := cell(row, idx, colRPE); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return section, fmt.Errorf("importers: %s row %d: RPE %q is not a number", sourceFile, rowNum, v)
		}
		section.RPE = &f
	}
	if v := cell(row, idx, colEquipment); v != "" {
		section.Equipment = &v
	}
	return section, nil
}

func normalizeUnit(v string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "kg", "kgs":
		return "kg", true
	case "lb", "lbs":
		return "lbs", true
	case "rir":
		return "rir", true
	default:
		return "", false
	}
}

func cell(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
