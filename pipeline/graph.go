package pipeline

import "errors"

// Kind identifies which pipeline a transaction belongs to. Each kind owns its
// own stage graph.
type Kind string

const (
	KindBuyer       Kind = "buyer"
	KindSeller      Kind = "seller"
	KindBuyersAgent Kind = "buyers_agent"
)

// Stage identifies a single stage within a pipeline.
type Stage string

// Buyer pipeline stages.
const (
	StageNewEnquiry          Stage = "new-enquiry"
	StageQualifiedLead       Stage = "qualified-lead"
	StageActiveSearch        Stage = "active-search"
	StagePropertyShortlisted Stage = "property-shortlisted"
	StageDueDiligence        Stage = "due-diligence"
	StageOfferMade           Stage = "offer-made"
	StageUnderContract       Stage = "under-contract"
	StageSettled             Stage = "settled"
)

// Seller pipeline stages.
const (
	StageAppraisal        Stage = "appraisal"
	StageListingAgreement Stage = "listing-agreement"
	StagePreparation      Stage = "preparation"
	StageOnMarket         Stage = "on-market"
	StageOffersReceived   Stage = "offers-received"
)

// Buyers-agent pipeline stages.
const (
	StageBriefCreated Stage = "brief-created"
	StageBriefActive  Stage = "brief-active"
	StageShortlisting Stage = "shortlisting"
	StageInspections  Stage = "inspections"
	StageNegotiation  Stage = "negotiation"
)

var (
	// ErrUnknownKind signals a pipeline kind with no declared graph.
	ErrUnknownKind = errors.New("pipeline: unknown pipeline kind")
	// ErrUnknownStage signals a stage outside the kind's stage set.
	ErrUnknownStage = errors.New("pipeline: stage not in pipeline")
	// ErrInvalidTransition signals a stage move absent from the edge set.
	ErrInvalidTransition = errors.New("pipeline: invalid stage transition")
)

type edge struct {
	from Stage
	to   Stage
}

// Graph declares the ordered stage set and permitted transition edges for one
// pipeline kind. The edge set, not the ordering, is the source of truth for
// which moves are legal; ordering exists for progress display only.
type Graph struct {
	kind   Kind
	stages []Stage
	member map[Stage]int
	edges  map[edge]bool
}

func newGraph(kind Kind, stages []Stage, edges []edge) Graph {
	member := make(map[Stage]int, len(stages))
	for i, s := range stages {
		member[s] = i
	}
	set := make(map[edge]bool, len(edges))
	for _, e := range edges {
		set[e] = true
	}
	return Graph{kind: kind, stages: stages, member: member, edges: set}
}

// chain returns the consecutive forward edges for an ordered stage list.
func chain(stages []Stage) []edge {
	out := make([]edge, 0, len(stages)-1)
	for i := 0; i+1 < len(stages); i++ {
		out = append(out, edge{stages[i], stages[i+1]})
	}
	return out
}

var buyerGraph = func() Graph {
	stages := []Stage{
		StageNewEnquiry,
		StageQualifiedLead,
		StageActiveSearch,
		StagePropertyShortlisted,
		StageDueDiligence,
		StageOfferMade,
		StageUnderContract,
		StageSettled,
	}
	edges := chain(stages)
	// A stalled search may drop back to nurturing the lead.
	edges = append(edges, edge{StageActiveSearch, StageQualifiedLead})
	// Cash unconditional deals skip due diligence entirely.
	edges = append(edges, edge{StagePropertyShortlisted, StageOfferMade})
	// Contracts already exchanged during due diligence.
	edges = append(edges, edge{StageDueDiligence, StageUnderContract})
	return newGraph(KindBuyer, stages, edges)
}()

var sellerGraph = func() Graph {
	stages := []Stage{
		StageAppraisal,
		StageListingAgreement,
		StagePreparation,
		StageOnMarket,
		StageOffersReceived,
		StageUnderContract,
		StageSettled,
	}
	edges := chain(stages)
	// Withdrawn listings go back to preparation before relisting.
	edges = append(edges, edge{StageOnMarket, StagePreparation})
	// Pre-auction unconditional offer exchanges straight off market.
	edges = append(edges, edge{StageOnMarket, StageUnderContract})
	return newGraph(KindSeller, stages, edges)
}()

var buyersAgentGraph = func() Graph {
	stages := []Stage{
		StageBriefCreated,
		StageBriefActive,
		StageShortlisting,
		StageInspections,
		StageNegotiation,
		StageUnderContract,
		StageSettled,
	}
	edges := chain(stages)
	// Exhausted shortlists restart the search.
	edges = append(edges, edge{StageInspections, StageShortlisting})
	// Off-market direct deals negotiate without inspections.
	edges = append(edges, edge{StageShortlisting, StageNegotiation})
	return newGraph(KindBuyersAgent, stages, edges)
}()

var graphs = map[Kind]Graph{
	KindBuyer:       buyerGraph,
	KindSeller:      sellerGraph,
	KindBuyersAgent: buyersAgentGraph,
}

// GraphFor returns the immutable stage graph for the given kind.
func GraphFor(kind Kind) (Graph, error) {
	g, ok := graphs[kind]
	if !ok {
		return Graph{}, ErrUnknownKind
	}
	return g, nil
}

// Kind reports which pipeline the graph belongs to.
func (g Graph) Kind() Kind { return g.kind }

// Contains reports whether the stage is a member of the graph's stage set.
func (g Graph) Contains(stage Stage) bool {
	_, ok := g.member[stage]
	return ok
}

// CanTransition reports whether (from, to) is a permitted edge.
func (g Graph) CanTransition(from, to Stage) bool {
	return g.edges[edge{from, to}]
}

// Stages returns the ordered stage list for progress display. The returned
// slice is a copy.
func (g Graph) Stages() []Stage {
	out := make([]Stage, len(g.stages))
	copy(out, g.stages)
	return out
}

// Initial returns the first stage of the pipeline.
func (g Graph) Initial() Stage {
	return g.stages[0]
}

// Validate accepts or rejects an attempted stage move for the given kind.
// It is side-effect free and safe to call speculatively before committing a
// caller action; it never consults persisted state.
func Validate(kind Kind, from, to Stage) error {
	g, err := GraphFor(kind)
	if err != nil {
		return err
	}
	if !g.Contains(from) || !g.Contains(to) {
		return ErrUnknownStage
	}
	if !g.CanTransition(from, to) {
		return ErrInvalidTransition
	}
	return nil
}
