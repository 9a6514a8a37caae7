package model

// ResourceType is the resolved role of a span within a page session.
type ResourceType string

const (
	ResourceDocument  ResourceType = "document"
	ResourceFetch     ResourceType = "fetch"
	ResourceApi       ResourceType = "api"
	ResourceDatabase  ResourceType = "database"
	ResourceExternal  ResourceType = "external"
	ResourceRsc       ResourceType = "rsc"
	ResourceAction    ResourceType = "action"
	ResourceRender    ResourceType = "render"
	ResourceHydration ResourceType = "hydration"
	ResourceCache     ResourceType = "cache"
	ResourceOther     ResourceType = "other"
)

// Resource is a RawSpan reinterpreted as a typed, tree-positioned unit of
// work. Children are owned copies, not live span references.
type Resource struct {
	RawSpan
	Type       ResourceType `json:"type"`
	Url        string       `json:"url,omitempty"`
	StatusCode *int         `json:"statusCode,omitempty"`
	Size       *int64       `json:"size,omitempty"`
	Cached     bool         `json:"cached"`
	Initiator  string       `json:"initiator,omitempty"`
	Children   []Resource   `json:"children,omitempty"`
}
