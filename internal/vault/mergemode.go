package vault

// MergeMode is the per-group policy controlling whether deletions
// propagate during a merge.
type MergeMode int

const (
	// MergeModeDefault behaves like MergeModeSynchronize unless a forced
	// mode is set on the Merger, which then takes precedence.
	MergeModeDefault MergeMode = iota
	MergeModeKeepLocal
	MergeModeKeepRemote
	MergeModeSynchronize
	MergeModeDuplicate
)

func (m MergeMode) String() string {
	switch m {
	case MergeModeDefault:
		return "Default"
	case MergeModeKeepLocal:
		return "KeepLocal"
	case MergeModeKeepRemote:
		return "KeepRemote"
	case MergeModeSynchronize:
		return "Synchronize"
	case MergeModeDuplicate:
		return "Duplicate"
	default:
		return "Unknown"
	}
}
