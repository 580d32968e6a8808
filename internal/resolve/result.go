package resolve

// Source is the provenance category a resolved value came from.
type Source string

const (
	SourceExplicitText        Source = "explicit-text"
	SourceConversationHistory Source = "conversation-history"
	SourceSavedDefault        Source = "saved-default"
	SourceActiveDefault       Source = "active-default"
)

// Result is a resolved value annotated with confidence and provenance.
// Results are computed fresh per query and never cached across queries.
type Result struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Source     Source  `json:"source"`
}

// HistoryTurn is the read-only view of a prior conversation turn that the
// resolvers scan.
type HistoryTurn struct {
	Role    string
	Message string
}
