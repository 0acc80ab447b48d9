package zim

// ProgressEvent represents a progress update during archive creation.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// URL is the item currently being processed, if applicable.
	URL string

	// ItemsDone is the number of items consumed so far.
	ItemsDone int

	// BytesDone is the number of bytes completed in the current stage.
	BytesDone uint64

	// BytesTotal is the total bytes for the current stage.
	// Zero indicates the total is unknown.
	BytesTotal uint64
}

// ProgressStage identifies the current phase of archive creation.
type ProgressStage uint8

const (
	// StageClustering indicates items are being read and grouped into clusters.
	StageClustering ProgressStage = iota

	// StageWritingIndex indicates pointer tables and directory entries are being written.
	StageWritingIndex

	// StageWritingClusters indicates cluster data is being written.
	StageWritingClusters

	// StageChecksumming indicates the file is being re-read to compute the checksum.
	StageChecksumming
)

// String returns the human-readable name of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageClustering:
		return "clustering"
	case StageWritingIndex:
		return "writing index"
	case StageWritingClusters:
		return "writing clusters"
	case StageChecksumming:
		return "checksumming"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates. It is called from the goroutine
// running Create.
type ProgressFunc func(ProgressEvent)
