package domain

type ViolationKind string

const (
	ViolationPastDate      ViolationKind = "past_date"
	ViolationBeyondHorizon ViolationKind = "beyond_horizon"
	ViolationTimeOrder     ViolationKind = "end_before_start"
	ViolationPriceConflict ViolationKind = "price_conflict"
)

// AuditFinding is the result of one audit pass. It is not persisted; the
// status flips on the staged rows are the durable effect.
type AuditFinding struct {
	ErrorCount       int
	QuarantinedCount int
	RestoredCount    int
	Summary          map[ViolationKind]int
}

// TierCounts reports how many records sit in each pipeline tier.
type TierCounts struct {
	Staged      int64
	Clean       int64
	Quarantined int64
	Published   int64
}
