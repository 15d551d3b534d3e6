package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchLists Phase = iota
	EnrichList
	ExportList
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchLists:
		return "fetch_lists"
	case EnrichList:
		return "enrich_list"
	case ExportList:
		return "export_list"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func fetchingListsUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLists,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Fetching %d lists...", total),
	}
}

func enrichedListUpdate(step, total int, list *ListExportJob) ProgressUpdate {
	return ProgressUpdate{
		Phase:   EnrichList,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Resolved %s (%d movies)", step, total, list.List.Name, len(list.List.Items)),
		Data:    list.List,
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportList,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportList,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Wrote manifest %s", path),
	}
}
