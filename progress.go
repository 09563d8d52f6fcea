package webarchiver

// ProgressStage identifies the current phase of a run.
type ProgressStage int

const (
	// StageDiscovering indicates inputs are being expanded and classified.
	StageDiscovering ProgressStage = iota

	// StageMatching indicates a matching pass is underway.
	StageMatching

	// StageEncoding indicates output files are being written.
	StageEncoding
)

// String returns the stage name.
func (s ProgressStage) String() string {
	switch s {
	case StageDiscovering:
		return "discovering"
	case StageMatching:
		return "matching"
	case StageEncoding:
		return "encoding"
	default:
		return "unknown"
	}
}

// ProgressEvent represents a progress update during a run.
type ProgressEvent struct {
	Stage ProgressStage
	Pass  int
	Path  string
	Done  int
	Total int
}

// ProgressFunc receives progress updates. It is always called from the
// single processing thread, after the current file completes.
type ProgressFunc func(ProgressEvent)
