package model

// PageTiming places server wall-clock and browser performance values on one
// axis. NavigationStart is absolute unix ms; all other fields are offsets in
// ms relative to NavigationStart after anchor alignment.
type PageTiming struct {
	NavigationStart  float64  `json:"navigationStart"`
	ResponseStart    *float64 `json:"responseStart,omitempty"`
	DomContentLoaded *float64 `json:"domContentLoaded,omitempty"`
	Load             *float64 `json:"load,omitempty"`
	Fcp              *float64 `json:"fcp,omitempty"`
	Lcp              *float64 `json:"lcp,omitempty"`
	SpaLcp           *float64 `json:"spaLcp,omitempty"`
}

// SessionStats is the aggregate view computed in one linear pass over the
// session's resources.
type SessionStats struct {
	TotalResources  int       `json:"totalResources"`
	ClientResources int       `json:"clientResources"`
	ServerResources int       `json:"serverResources"`
	TotalDuration   float64   `json:"totalDuration"`
	ErrorCount      int       `json:"errorCount"`
	CachedCount     int       `json:"cachedCount"`
	SlowestResource *Resource `json:"slowestResource,omitempty"`
}

// PageSession is everything reconstructed for one page view. Resources is
// the pre-order flattening of RootResources.
type PageSession struct {
	Id                string         `json:"id"`
	ProjectId         string         `json:"projectId,omitempty"`
	Url               string         `json:"url"`
	Route             string         `json:"route"`
	NavigationType    NavigationType `json:"navigationType"`
	PreviousSessionId string         `json:"previousSessionId,omitempty"`
	Timing            PageTiming     `json:"timing"`
	Resources         []Resource     `json:"resources"`
	RootResources     []Resource     `json:"rootResources"`
	Stats             SessionStats   `json:"stats"`
}
