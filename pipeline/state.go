package pipeline

// Agent names used for routing decisions. Exactly these three values are
// valid for State.NextAgent once routing has run.
const (
	AgentGeneralInformation = "general_information"
	AgentPersonalisedRAG    = "personalised_rag"
	AgentEscalation         = "escalation"
)

// State is the mutable record threaded through every step of a single run.
// UserQuery is set at creation and never changes; triage sets Intent,
// Sentiment and Analysis; routing sets NextAgent; exactly one handler sets
// FinalResponse. The message slices are append-only step logs kept purely
// for observability.
type State struct {
	UserQuery     string `json:"user_query"`
	Intent        string `json:"intent,omitempty"`
	Sentiment     string `json:"sentiment,omitempty"`
	Analysis      string `json:"analysis,omitempty"`
	NextAgent     string `json:"next_agent,omitempty"`
	FinalResponse string `json:"final_response,omitempty"`

	SupervisorMessages         []string `json:"supervisor_messages,omitempty"`
	TriageMessages             []string `json:"triage_messages,omitempty"`
	GeneralInformationMessages []string `json:"general_information_messages,omitempty"`
	PersonalisedRAGMessages    []string `json:"personalised_rag_messages,omitempty"`
	EscalationMessages         []string `json:"escalation_messages,omitempty"`
}

func NewState(userQuery string) *State {
	return &State{UserQuery: userQuery}
}

// Progress is an informational event emitted while a run executes. Events
// carry no control-flow meaning and may be dropped if the observer cannot
// keep up.
type Progress struct {
	Step    string                 `json:"step"`
	Message string                 `json:"message"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}
