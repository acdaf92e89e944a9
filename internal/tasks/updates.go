package tasks

import (
	"fmt"

	"github.com/desertthunder/setcast/internal/models"
)

// ProgressUpdate represents a progress event during an upload run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Pipeline phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Pipeline phase enumeration
type Phase int

const (
	Intake Phase = iota
	Parsing
	Uploading
	Archiving
	Done
)

func (p Phase) String() string {
	switch p {
	case Intake:
		return "intake"
	case Parsing:
		return "parsing"
	case Uploading:
		return "uploading"
	case Archiving:
		return "archiving"
	case Done:
		return "done"
	default:
		return ""
	}
}

func intakeUpdate(uploadID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Intake,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Validating received files for %s...", uploadID),
	}
}

func parsingUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Parsing,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Parsing songlist: %s", path),
	}
}

func songlistReadyUpdate(list *models.Songlist, fallback bool) ProgressUpdate {
	msg := fmt.Sprintf("Songlist confirmed (%d tracks)", len(list.Tracks))
	if fallback {
		msg = "Songlist unparseable, using minimal fallback"
	}
	return ProgressUpdate{
		Phase:   Parsing,
		Step:    1,
		Total:   1,
		Message: msg,
		Data:    list,
	}
}

func uploadingUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Uploading,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Uploading to %s...", step, total, name),
	}
}

func destinationDoneUpdate(step, total int, name string, result models.DestinationResult) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] %s: ok", step, total, name)
	if result.Skipped {
		msg = fmt.Sprintf("[%d/%d] %s: skipped", step, total, name)
	} else if !result.Success {
		msg = fmt.Sprintf("[%d/%d] %s: failed (%s)", step, total, name, result.Error)
	}
	return ProgressUpdate{
		Phase:   Uploading,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    result,
	}
}

func archivingUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Archiving,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Archiving inputs to %s...", path),
	}
}

func completedUpdate(uploadID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Upload %s completed", uploadID),
	}
}
