package models

// ClaimLogEntry is one immutable audit record: a single accepted status
// change on a single claim. Entries are append-only; Seq is assigned by the
// store and orders entries within a claim (timestamps alone can tie).
type ClaimLogEntry struct {
	// Seq is the store-assigned insertion sequence number. Strictly
	// increasing across the whole log, and therefore within a claim.
	Seq int64

	// ClaimID references the claim this entry belongs to.
	ClaimID string

	// FromStatus and ToStatus record the transition exactly as applied.
	FromStatus ClaimStatus
	ToStatus   ClaimStatus

	// Event is the action that caused the transition.
	Event Event

	// ActorID, ActorName and ActorRole identify who triggered it.
	ActorID   string
	ActorName string
	ActorRole Role

	// Comment is optional free text (approver note, admin override reason).
	Comment string

	// CreatedAt is the Unix timestamp of the transition. Monotonically
	// non-decreasing per claim; the store clamps it against the previous
	// entry so a clock step backwards can't reorder history.
	CreatedAt int64
}
