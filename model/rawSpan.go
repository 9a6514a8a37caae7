package model

// SpanOrigin identifies which runtime emitted a span.
type SpanOrigin string

const (
	OriginClient SpanOrigin = "client"
	OriginServer SpanOrigin = "server"
)

// SpanCategory is the coarse classification stamped by the instrumentation
// layer before any resource-type inference runs.
type SpanCategory string

const (
	CategoryHTTP       SpanCategory = "http"
	CategoryRender     SpanCategory = "render"
	CategoryHydration  SpanCategory = "hydration"
	CategoryDatabase   SpanCategory = "database"
	CategoryCache      SpanCategory = "cache"
	CategoryExternal   SpanCategory = "external"
	CategoryMiddleware SpanCategory = "middleware"
	CategoryOther      SpanCategory = "other"
)

type SpanStatus string

const (
	StatusOk    SpanStatus = "ok"
	StatusError SpanStatus = "error"
	StatusUnset SpanStatus = "unset"
)

// RawSpan is one timed operation as received from the transport layer.
// Immutable once created; all times are unix milliseconds and
// Duration = EndTime - StartTime.
type RawSpan struct {
	Id         string                 `json:"id"`
	ParentId   string                 `json:"parentId,omitempty"`
	TraceId    string                 `json:"traceId"`
	Name       string                 `json:"name"`
	Origin     SpanOrigin             `json:"origin"`
	Category   SpanCategory           `json:"category"`
	StartTime  float64                `json:"startTime"`
	EndTime    float64                `json:"endTime"`
	Duration   float64                `json:"duration"`
	Status     SpanStatus             `json:"status"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	SessionId  string                 `json:"sessionId,omitempty"`
	ProjectId  string                 `json:"projectId,omitempty"`
}

// StringAttr returns a string attribute value, or "" when absent or not a
// string.
func (s *RawSpan) StringAttr(key string) string {
	if s.Attributes == nil {
		return ""
	}
	if value, ok := s.Attributes[key]; ok {
		if str, typeOk := value.(string); typeOk {
			return str
		}
	}
	return ""
}

// FloatAttr returns a numeric attribute value. Both float64 and int are
// accepted since JSON and protobuf decoding disagree on number types.
func (s *RawSpan) FloatAttr(key string) (float64, bool) {
	if s.Attributes == nil {
		return 0, false
	}
	switch v := s.Attributes[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

// BoolAttr returns a bool attribute value, or false when absent.
func (s *RawSpan) BoolAttr(key string) bool {
	if s.Attributes == nil {
		return false
	}
	if value, ok := s.Attributes[key]; ok {
		if b, typeOk := value.(bool); typeOk {
			return b
		}
	}
	return false
}
