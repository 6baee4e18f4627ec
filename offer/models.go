package offer

import "time"

// SaleMethod is how the property is being sold.
type SaleMethod string

const (
	MethodPrivateTreaty SaleMethod = "private_treaty"
	MethodAuction       SaleMethod = "auction"
	MethodEOI           SaleMethod = "eoi"
	MethodTender        SaleMethod = "tender"
)

// Status is the coarse negotiation state of an offer.
type Status string

const (
	StatusPreparing Status = "preparing"
	StatusSubmitted Status = "submitted"
	StatusCountered Status = "countered"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusWithdrawn Status = "withdrawn"
)

// Response is a single round's outcome. It never drives the parent offer's
// status automatically; advancing the offer is an explicit caller action.
type Response string

const (
	ResponsePending   Response = "pending"
	ResponseAccepted  Response = "accepted"
	ResponseRejected  Response = "rejected"
	ResponseCountered Response = "countered"
)

// AuctionResult is the outcome of an auction for the client.
type AuctionResult string

const (
	ResultWon      AuctionResult = "won"
	ResultPassedIn AuctionResult = "passed_in"
	ResultOutbid   AuctionResult = "outbid"
)

// Offer tracks one negotiation. The strategy prices are informational and are
// never validated against each other.
type Offer struct {
	ID               string
	TransactionID    string
	PropertyID       string
	ClientID         string
	SaleMethod       SaleMethod
	Status           Status
	MaxPriceCents    *int64
	RecommendedCents *int64
	WalkAwayCents    *int64
	Conditions       []string
	SettlementTerms  *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Round is one amount/response exchange. Rounds are append-only and ordered
// by Seq; a later response never alters an earlier round.
type Round struct {
	ID                 string
	OfferID            string
	Seq                int
	AmountCents        int64
	Conditions         []string
	Response           Response
	CounterAmountCents *int64
	Notes              *string
	CreatedAt          time.Time
}

// AuctionEvent is the single auction outcome record for an auction-method
// offer. Result fields are populated post-auction.
type AuctionEvent struct {
	OfferID            string
	AuctionAt          time.Time
	RegistrationNumber *string
	BiddingStrategy    *string
	Result             *AuctionResult
	FinalPriceCents    *int64
	BidderCount        *int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// statusTransitions is the offer status machine: countered restarts the
// submitted state with a fresh round; accepted, rejected and withdrawn are
// terminal.
var statusTransitions = map[Status]map[Status]bool{
	StatusPreparing: {StatusSubmitted: true},
	StatusSubmitted: {StatusCountered: true, StatusAccepted: true, StatusRejected: true, StatusWithdrawn: true},
	StatusCountered: {StatusSubmitted: true},
	StatusAccepted:  {},
	StatusRejected:  {},
	StatusWithdrawn: {},
}

func validStatus(s Status) bool {
	_, ok := statusTransitions[s]
	return ok
}

func validResponse(r Response) bool {
	switch r {
	case ResponsePending, ResponseAccepted, ResponseRejected, ResponseCountered:
		return true
	default:
		return false
	}
}

func validResult(r AuctionResult) bool {
	switch r {
	case ResultWon, ResultPassedIn, ResultOutbid:
		return true
	default:
		return false
	}
}
