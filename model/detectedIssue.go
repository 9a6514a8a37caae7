package model

// IssueSeverity orders detected issues for consumers. Critical sorts first.
type IssueSeverity string

const (
	SeverityCritical     IssueSeverity = "critical"
	SeverityWarning      IssueSeverity = "warning"
	SeverityInfo         IssueSeverity = "info"
	SeverityOptimization IssueSeverity = "optimization"
)

// Rank maps severity onto a sortable integer, critical lowest.
func (s IssueSeverity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	case SeverityOptimization:
		return 3
	}
	return 4
}

type IssueType string

const (
	IssueSequentialWaterfall  IssueType = "sequential-waterfall"
	IssueParentChildWaterfall IssueType = "parent-child-waterfall"
	IssueSequentialInitiator  IssueType = "sequential-initiator"
	IssueNPlusOne             IssueType = "n-plus-one"
	IssueUncachedFetch        IssueType = "uncached-fetch"
)

// WaterfallChain is a run of resources that executed back to back where
// parallel execution was possible. WastedTime is the saving parallel
// execution would have bought: sum(durations) - max(duration).
type WaterfallChain struct {
	Resources     []Resource `json:"resources"`
	TotalDuration float64    `json:"totalDuration"`
	WastedTime    float64    `json:"wastedTime"`
}

// NPlusOnePattern groups near-identical requests differing only by an
// identifier in the URL.
type NPlusOnePattern struct {
	Pattern       string     `json:"pattern"`
	Count         int        `json:"count"`
	TotalDuration float64    `json:"totalDuration"`
	AvgDuration   float64    `json:"avgDuration"`
	Initiator     string     `json:"initiator,omitempty"`
	Resources     []Resource `json:"resources,omitempty"`
}

// IssueMatch is the evidence a detector found in one session. Only the
// fields relevant to the detector are populated.
type IssueMatch struct {
	Severity     IssueSeverity     `json:"severity"`
	TimeImpactMs float64           `json:"timeImpactMs"`
	Chains       []WaterfallChain  `json:"chains,omitempty"`
	Patterns     []NPlusOnePattern `json:"patterns,omitempty"`
	Resources    []Resource        `json:"resources,omitempty"`
}

// IssueSuggestion is human-readable advice derived purely from a match.
type IssueSuggestion struct {
	Summary     string `json:"summary"`
	Explanation string `json:"explanation"`
	Example     string `json:"example,omitempty"`
}

// IssueDefinition is the static part of a detector.
type IssueDefinition struct {
	Type            IssueType     `json:"type"`
	Title           string        `json:"title"`
	DefaultSeverity IssueSeverity `json:"defaultSeverity"`
}

// DetectedIssue is one scored finding for one session.
type DetectedIssue struct {
	Id           string          `json:"id"`
	SessionId    string          `json:"sessionId"`
	Type         IssueType       `json:"type"`
	Title        string          `json:"title"`
	Severity     IssueSeverity   `json:"severity"`
	TimeImpactMs float64         `json:"timeImpactMs"`
	Match        IssueMatch      `json:"match"`
	Suggestion   IssueSuggestion `json:"suggestion"`
}
