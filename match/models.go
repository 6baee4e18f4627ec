package match

import "time"

// Status represents the lifecycle of a property match.
type Status string

const (
	StatusNew              Status = "new"
	StatusSentToClient     Status = "sent_to_client"
	StatusClientInterested Status = "client_interested"
	StatusInspectionBooked Status = "inspection_booked"
	StatusRejected         Status = "rejected"
	StatusUnderReview      Status = "under_review"
)

// Breakdown holds the sub-scores combined into a match's overall score. The
// four mandatory components are always present; Investor participates only
// when set.
type Breakdown struct {
	Price    int
	Location int
	Size     int
	Feature  int
	Investor *int
}

// Match links a property to a client brief. Overall is always the value the
// scorer derives from the current breakdown; it is never set independently.
type Match struct {
	ID              string
	PropertyID      string
	BriefID         string
	Overall         int
	Breakdown       Breakdown
	Status          Status
	RejectionReason *string
	AgentNotes      *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// statusTransitions is the permitted edge set for match statuses. Rejection
// is handled separately: it is reachable from every non-terminal status and
// requires a reason.
var statusTransitions = map[Status]map[Status]bool{
	StatusNew:              {StatusSentToClient: true},
	StatusSentToClient:     {StatusClientInterested: true, StatusUnderReview: true},
	StatusClientInterested: {StatusInspectionBooked: true},
	StatusInspectionBooked: {},
	StatusUnderReview:      {},
	StatusRejected:         {},
}

func validStatus(s Status) bool {
	_, ok := statusTransitions[s]
	return ok
}

// canTransition reports whether current -> next is a legal status move.
// Rejected is terminal; reactivation means creating a new match.
func canTransition(current, next Status) bool {
	if current == StatusRejected {
		return false
	}
	if next == StatusRejected {
		return true
	}
	return statusTransitions[current][next]
}
