package handler

import (
	"encoding/hex"
	"io"

	"github.com/golang/protobuf/proto"
	"github.com/kataras/iris/v12"
	"github.com/pagelens/pagelens-observer/common"
	"github.com/pagelens/pagelens-observer/metrics"
	"github.com/pagelens/pagelens-observer/model"
	"github.com/pagelens/pagelens-observer/sessions"
	"github.com/pagelens/pagelens-observer/utils"
	logger "github.com/zerok-ai/zk-utils-go/logs"
	tracev1 "go.opentelemetry.io/proto/otlp/trace/v1"
)

var traceLogTag = "TraceHandler"

const nsPerMs = 1e6

// TraceHandler decodes OTLP trace payloads and feeds the resulting raw
// spans into the session manager one at a time, in arrival order. Only
// field mapping happens here; all correlation lives in the core.
type TraceHandler struct {
	manager *sessions.SessionManager
}

func NewTraceHandler(manager *sessions.SessionManager) *TraceHandler {
	return &TraceHandler{manager: manager}
}

func (th *TraceHandler) ServeHTTP(ctx iris.Context) {
	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		return
	}

	var traceData tracev1.TracesData
	if err = proto.Unmarshal(body, &traceData); err != nil {
		metrics.TotalSpansMalformed.Inc()
		ctx.StatusCode(iris.StatusBadRequest)
		return
	}

	th.ProcessTraceData(traceData.ResourceSpans)
	ctx.StatusCode(iris.StatusOK)
}

// ProcessTraceData maps every OTLP span onto a RawSpan and ingests it.
// Malformed spans are skipped without aborting the batch.
func (th *TraceHandler) ProcessTraceData(resourceSpans []*tracev1.ResourceSpans) {
	var processedSpanCount int
	if len(resourceSpans) == 0 {
		logger.Info(traceLogTag, "No resources found in the call")
		return
	}
	for _, resourceSpan := range resourceSpans {
		resourceAttrMap := map[string]interface{}{}
		if resourceSpan.Resource != nil {
			resourceAttrMap = utils.ConvertKVListToMap(resourceSpan.Resource.Attributes)
		}
		for _, scopeSpans := range resourceSpan.ScopeSpans {
			for _, span := range scopeSpans.Spans {
				raw, ok := th.createRawSpan(span, resourceAttrMap)
				if !ok {
					metrics.TotalSpansMalformed.Inc()
					continue
				}
				processedSpanCount++
				th.manager.IngestSpan(raw)
			}
		}
	}
	logger.InfoF(traceLogTag, "Processed %v spans", processedSpanCount)
}

func (th *TraceHandler) createRawSpan(span *tracev1.Span, resourceAttrMap map[string]interface{}) (model.RawSpan, bool) {
	traceId := hex.EncodeToString(span.TraceId)
	spanId := hex.EncodeToString(span.SpanId)
	if traceId == "" || spanId == "" {
		logger.Warn(traceLogTag, "TraceId or SpanId is empty for span ", span.Name)
		return model.RawSpan{}, false
	}

	attrMap := utils.ConvertKVListToMap(span.Attributes)

	raw := model.RawSpan{
		Id:         spanId,
		ParentId:   hex.EncodeToString(span.ParentSpanId),
		TraceId:    traceId,
		Name:       span.Name,
		StartTime:  float64(span.StartTimeUnixNano) / nsPerMs,
		EndTime:    float64(span.EndTimeUnixNano) / nsPerMs,
		Attributes: attrMap,
	}
	raw.Duration = raw.EndTime - raw.StartTime
	raw.Origin = spanOrigin(attrMap, resourceAttrMap)
	raw.Category = spanCategory(raw)
	raw.Status = spanStatus(span.Status)
	raw.SessionId, _ = attrMap[common.SessionIdAttrKey].(string)
	raw.ProjectId, _ = attrMap[common.ProjectIdAttrKey].(string)
	return raw, true
}

func spanOrigin(attrMap map[string]interface{}, resourceAttrMap map[string]interface{}) model.SpanOrigin {
	if origin, ok := attrMap[common.OriginAttrKey].(string); ok {
		if origin == string(model.OriginClient) {
			return model.OriginClient
		}
		return model.OriginServer
	}
	if language, ok := resourceAttrMap[common.ResourceLanguageKey].(string); ok && language == "webjs" {
		return model.OriginClient
	}
	return model.OriginServer
}

func spanCategory(raw model.RawSpan) model.SpanCategory {
	if override := raw.StringAttr(common.CategoryAttrKey); override != "" {
		return model.SpanCategory(override)
	}
	if raw.StringAttr(common.DBSystemAttrKey) != "" {
		return model.CategoryDatabase
	}
	if raw.StringAttr(common.HTTPUrlAttrKey) != "" ||
		raw.StringAttr(common.UrlFullAttrKey) != "" ||
		raw.StringAttr(common.HTTPMethodAttrKey) != "" {
		return model.CategoryHTTP
	}
	return model.CategoryOther
}

func spanStatus(status *tracev1.Status) model.SpanStatus {
	if status == nil {
		return model.StatusUnset
	}
	switch status.Code {
	case tracev1.Status_STATUS_CODE_OK:
		return model.StatusOk
	case tracev1.Status_STATUS_CODE_ERROR:
		return model.StatusError
	}
	return model.StatusUnset
}
