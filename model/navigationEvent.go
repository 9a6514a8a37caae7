package model

// NavigationType describes how the browser reached a page session.
type NavigationType string

const (
	NavigationInitial     NavigationType = "initial"
	NavigationNavigate    NavigationType = "navigation"
	NavigationBackForward NavigationType = "back-forward"
)

// NavigationTiming carries the browser performance timeline for one
// navigation. NavigationStart is absolute unix ms; every other field is an
// offset in ms relative to the browser's own navigation start.
type NavigationTiming struct {
	NavigationStart  float64  `json:"navigationStart"`
	ResponseStart    *float64 `json:"responseStart,omitempty"`
	DomContentLoaded *float64 `json:"domContentLoaded,omitempty"`
	Load             *float64 `json:"load,omitempty"`
	Fcp              *float64 `json:"fcp,omitempty"`
	Lcp              *float64 `json:"lcp,omitempty"`
}

// NavigationEvent is emitted by the client runtime once per user-perceived
// navigation. It may arrive before, with, or after the spans of the session
// it describes.
type NavigationEvent struct {
	SessionId         string           `json:"sessionId"`
	ProjectId         string           `json:"projectId"`
	Url               string           `json:"url"`
	Route             string           `json:"route"`
	NavigationType    NavigationType   `json:"navigationType"`
	PreviousSessionId string           `json:"previousSessionId,omitempty"`
	Timing            NavigationTiming `json:"timing"`
}
