package enginetypes

// EngineUsage describes what an execution context bound to an engine is
// used for. The usage class drives scheduling priority and the deferred
// context initialization policy.
type EngineUsage int

//go:generate go tool enumer -type EngineUsage engineusage.go

const (
	// UsageRegular is ordinary client-submitted work.
	UsageRegular EngineUsage = iota

	// UsageLowPriority marks contexts that the hardware scheduler may
	// preempt in favour of regular work.
	UsageLowPriority

	// UsageInternal marks contexts owned by the driver itself (pagetable
	// updates, internal copies). Internal contexts are load-bearing for
	// driver startup and are always initialized eagerly.
	UsageInternal
)

// TypeUsage pairs an engine with the usage class of a context running on it.
type TypeUsage struct {
	Type  EngineType
	Usage EngineUsage
}
