package pb

// MergeStrategy controls how the Aggregate Coordinator resolves a sequence
// conflict detected during append.
type MergeStrategy int32

const (
	// MergeStrategyCommutative retries Handle against the latest EventBook;
	// the default. Exhausting retries surfaces FAILED_PRECONDITION.
	MergeStrategyCommutative MergeStrategy = 0
	// MergeStrategyStrict fails fast with ABORTED on any conflict.
	MergeStrategyStrict MergeStrategy = 1
	// MergeStrategyAggregateHandles skips coordinator-side validation
	// entirely and delegates conflict resolution to the business service.
	MergeStrategyAggregateHandles MergeStrategy = 2
)

func (s MergeStrategy) String() string {
	switch s {
	case MergeStrategyCommutative:
		return "COMMUTATIVE"
	case MergeStrategyStrict:
		return "STRICT"
	case MergeStrategyAggregateHandles:
		return "AGGREGATE_HANDLES"
	default:
		return "UNKNOWN"
	}
}

// SyncMode controls how long a command caller waits for downstream effects.
type SyncMode int32

const (
	// SyncModeNone returns as soon as events are durably appended.
	SyncModeNone SyncMode = 0
	// SyncModeSimple additionally awaits synchronous projector dispatch.
	SyncModeSimple SyncMode = 1
	// SyncModeCascade additionally awaits downstream saga/PM effects, bounded
	// by cascade depth and a timeout.
	SyncModeCascade SyncMode = 2
)

func (s SyncMode) String() string {
	switch s {
	case SyncModeNone:
		return "NONE"
	case SyncModeSimple:
		return "SIMPLE"
	case SyncModeCascade:
		return "CASCADE"
	default:
		return "UNKNOWN"
	}
}
