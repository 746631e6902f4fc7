package watcher

// ChangeAnalysis describes what a debounced change means for the hierarchy.
type ChangeAnalysis struct {
	Rebuild     bool   // input changed and should be reloaded
	KeepCurrent bool   // input is gone; keep serving the last good hierarchy
	Reason      string // for logs and status events
}

// AnalyzeChanges decides how to react to a debounced change event.
func AnalyzeChanges(event ChangeEvent) *ChangeAnalysis {
	switch event.Type {
	case ChangeTypeRemove:
		return &ChangeAnalysis{
			KeepCurrent: true,
			Reason:      "input file removed",
		}
	default:
		return &ChangeAnalysis{
			Rebuild: true,
			Reason:  "input file changed",
		}
	}
}
