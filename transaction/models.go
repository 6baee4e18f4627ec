package transaction

import (
	"time"

	"dealflow/pipeline"
)

// Transaction represents one client's journey through a pipeline. The engine
// never creates transactions; it only validates and records stage changes on
// them.
type Transaction struct {
	ID           string
	Kind         pipeline.Kind
	CurrentStage pipeline.Stage
	ContactID    string
	PropertyID   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TransitionRecord is an immutable, append-only audit entry. The ordered
// sequence of records for a transaction, replayed from its initial stage,
// reproduces its current stage.
type TransitionRecord struct {
	ID            string
	TransactionID string
	Seq           int
	FromStage     pipeline.Stage
	ToStage       pipeline.Stage
	ActorID       string
	Reason        *string
	CreatedAt     time.Time
}

// TransitionParams enumerates the inputs for one attempted stage move. The
// caller supplies its believed current stage; a stale value is caught by the
// store's current-value check at write time.
type TransitionParams struct {
	TransactionID string
	Kind          pipeline.Kind
	FromStage     pipeline.Stage
	ToStage       pipeline.Stage
	ActorID       string
	Reason        *string
}
