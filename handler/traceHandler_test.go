package handler

import (
	"testing"

	"github.com/pagelens/pagelens-observer/common"
	"github.com/pagelens/pagelens-observer/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	commonv1 "go.opentelemetry.io/proto/otlp/common/v1"
	resourcev1 "go.opentelemetry.io/proto/otlp/resource/v1"
	tracev1 "go.opentelemetry.io/proto/otlp/trace/v1"
)

func stringAttr(key, value string) *commonv1.KeyValue {
	return &commonv1.KeyValue{Key: key, Value: &commonv1.AnyValue{Value: &commonv1.AnyValue_StringValue{StringValue: value}}}
}

func otlpSpan(spanId, parentId byte, name string, attrs ...*commonv1.KeyValue) *tracev1.Span {
	span := &tracev1.Span{
		TraceId:           []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		SpanId:            []byte{spanId, 0, 0, 0, 0, 0, 0, 0},
		Name:              name,
		StartTimeUnixNano: 1_000_000_000,
		EndTimeUnixNano:   1_050_000_000,
		Attributes:        attrs,
		Status:            &tracev1.Status{Code: tracev1.Status_STATUS_CODE_OK},
	}
	if parentId != 0 {
		span.ParentSpanId = []byte{parentId, 0, 0, 0, 0, 0, 0, 0}
	}
	return span
}

func resourceSpans(resourceAttrs []*commonv1.KeyValue, spans ...*tracev1.Span) []*tracev1.ResourceSpans {
	return []*tracev1.ResourceSpans{{
		Resource:   &resourcev1.Resource{Attributes: resourceAttrs},
		ScopeSpans: []*tracev1.ScopeSpans{{Spans: spans}},
	}}
}

func TestProcessTraceDataIngestsDecodedSpans(t *testing.T) {
	manager := sessions.NewSessionManager(nil, nil, 10)
	th := NewTraceHandler(manager)

	root := otlpSpan(1, 0, "GET /products",
		stringAttr(common.SessionIdAttrKey, "session-1"),
		stringAttr(common.HTTPUrlAttrKey, "https://app.test/products"),
	)
	child := otlpSpan(2, 1, "db query", stringAttr(common.DBSystemAttrKey, "postgres"))

	th.ProcessTraceData(resourceSpans(nil, root, child))

	session, ok := manager.Session("session-1")
	require.True(t, ok)
	require.Len(t, session.Resources, 2)
	// 1_000_000_000ns becomes 1000ms.
	assert.Equal(t, float64(1000), session.Resources[0].StartTime)
	assert.Equal(t, float64(50), session.Resources[0].Duration)
}

func TestProcessTraceDataSkipsSpanWithoutIds(t *testing.T) {
	manager := sessions.NewSessionManager(nil, nil, 10)
	th := NewTraceHandler(manager)

	broken := otlpSpan(1, 0, "no ids", stringAttr(common.SessionIdAttrKey, "session-1"))
	broken.SpanId = nil

	th.ProcessTraceData(resourceSpans(nil, broken))
	assert.Empty(t, manager.Sessions())
}

func TestSpanOriginFromResourceLanguage(t *testing.T) {
	webjs := map[string]interface{}{common.ResourceLanguageKey: "webjs"}
	assert.Equal(t, "client", string(spanOrigin(map[string]interface{}{}, webjs)))
	assert.Equal(t, "server", string(spanOrigin(map[string]interface{}{}, map[string]interface{}{})))
	// An explicit origin attribute beats the SDK language.
	explicit := map[string]interface{}{common.OriginAttrKey: "server"}
	assert.Equal(t, "server", string(spanOrigin(explicit, webjs)))
}

func TestSpanCategoryInference(t *testing.T) {
	manager := sessions.NewSessionManager(nil, nil, 10)
	th := NewTraceHandler(manager)

	span := otlpSpan(1, 0, "query users", stringAttr(common.DBSystemAttrKey, "mysql"))
	raw, ok := th.createRawSpan(span, nil)
	require.True(t, ok)
	assert.Equal(t, "database", string(raw.Category))

	span = otlpSpan(2, 0, "fetch", stringAttr(common.HTTPMethodAttrKey, "GET"))
	raw, ok = th.createRawSpan(span, nil)
	require.True(t, ok)
	assert.Equal(t, "http", string(raw.Category))

	span = otlpSpan(3, 0, "custom", stringAttr(common.CategoryAttrKey, "hydration"))
	raw, ok = th.createRawSpan(span, nil)
	require.True(t, ok)
	assert.Equal(t, "hydration", string(raw.Category))
}
