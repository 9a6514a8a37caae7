package sessions

import (
	"sort"
	"strings"

	"github.com/pagelens/pagelens-observer/common"
	"github.com/pagelens/pagelens-observer/model"
	"github.com/pagelens/pagelens-observer/utils"
)

// BuildSession turns the spans assigned to one session plus an optional
// navigation event into a PageSession. It is a pure function of its inputs;
// the session is re-derived wholesale on every change. Returns nil when
// nothing but noise remains.
func BuildSession(sessionId string, spans []model.RawSpan, event *model.NavigationEvent) *model.PageSession {
	var kept []model.RawSpan
	for _, span := range spans {
		if !isNoise(span) {
			kept = append(kept, span)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	resources := make([]model.Resource, 0, len(kept))
	for _, span := range kept {
		resources = append(resources, toResource(span))
	}

	roots := buildResourceTree(resources)
	flat := flattenPreOrder(roots)

	navType := navigationTypeFor(event, flat)

	session := &model.PageSession{
		Id:             sessionId,
		NavigationType: navType,
		Timing:         computeTiming(flat, event, navType),
		Resources:      flat,
		RootResources:  roots,
		Stats:          computeStats(flat),
	}
	session.Url = extractUrl(flat, event)
	session.Route = extractRoute(flat, event)
	session.ProjectId = extractProjectId(kept, event)
	if event != nil {
		session.PreviousSessionId = event.PreviousSessionId
	}
	return session
}

// isNoise drops static assets, analytics beacons and dev-tool-internal
// frames before any session structure is derived.
func isNoise(span model.RawSpan) bool {
	url := spanUrl(span)
	for _, pattern := range common.NoisePatterns {
		if strings.Contains(span.Name, pattern) {
			return true
		}
		if url != "" && strings.Contains(url, pattern) {
			return true
		}
	}
	return false
}

func spanUrl(span model.RawSpan) string {
	if url := span.StringAttr(common.HTTPUrlAttrKey); url != "" {
		return url
	}
	if url := span.StringAttr(common.UrlFullAttrKey); url != "" {
		return url
	}
	return span.StringAttr(common.HTTPTargetAttrKey)
}

func hasRscMarker(span model.RawSpan, url string) bool {
	if span.BoolAttr(common.NextRscAttrKey) {
		return true
	}
	return strings.Contains(url, "_rsc")
}

func isDocumentSpan(span model.RawSpan) bool {
	return span.Origin == model.OriginServer &&
		span.StringAttr(common.NextSpanTypeAttrKey) == common.DocumentSpanType
}

// inferResourceType applies the priority-ordered classification rules.
func inferResourceType(span model.RawSpan, url string) model.ResourceType {
	if isDocumentSpan(span) {
		return model.ResourceDocument
	}
	switch span.Category {
	case model.CategoryRender:
		if hasRscMarker(span, url) {
			return model.ResourceRsc
		}
		return model.ResourceRender
	case model.CategoryHydration:
		return model.ResourceHydration
	case model.CategoryDatabase:
		return model.ResourceDatabase
	case model.CategoryCache:
		return model.ResourceCache
	case model.CategoryExternal:
		return model.ResourceExternal
	}
	if span.StringAttr(common.ServerActionAttrKey) != "" {
		return model.ResourceAction
	}
	if strings.Contains(url, "/api/") {
		return model.ResourceApi
	}
	if span.Category == model.CategoryHTTP {
		return model.ResourceFetch
	}
	return model.ResourceOther
}

func toResource(span model.RawSpan) model.Resource {
	url := spanUrl(span)
	resource := model.Resource{
		RawSpan:   span,
		Type:      inferResourceType(span, url),
		Url:       url,
		Initiator: span.StringAttr(common.InitiatorAttrKey),
	}
	if code, ok := span.FloatAttr(common.HTTPStatusCodeAttrKey); ok {
		status := int(code)
		resource.StatusCode = &status
	}
	if length, ok := span.FloatAttr(common.HTTPContentLenAttrKey); ok {
		size := int64(length)
		resource.Size = &size
	}
	if span.StringAttr(common.NextCacheAttrKey) == common.CacheHitValue || span.BoolAttr("cache.hit") {
		resource.Cached = true
	}
	return resource
}

// buildResourceTree nests each resource under its parent when the parent is
// present in the same span set. A resource whose parentId is absent from
// the set becomes a root, even when the parentId is non-empty: an orphan
// within the session is a root, distinct from a global orphan. Every level
// is sorted ascending by start time, recursively.
func buildResourceTree(resources []model.Resource) []model.Resource {
	byId := make(map[string]int, len(resources))
	for i := range resources {
		byId[resources[i].Id] = i
	}
	childIdx := make(map[string][]int, len(resources))
	var rootIdx []int
	for i := range resources {
		parentId := resources[i].ParentId
		if parentId != "" {
			if _, present := byId[parentId]; present && parentId != resources[i].Id {
				childIdx[parentId] = append(childIdx[parentId], i)
				continue
			}
		}
		rootIdx = append(rootIdx, i)
	}

	var attach func(idx int) model.Resource
	attach = func(idx int) model.Resource {
		node := resources[idx]
		node.Children = nil
		for _, ci := range childIdx[node.Id] {
			node.Children = append(node.Children, attach(ci))
		}
		sort.SliceStable(node.Children, func(i, j int) bool {
			return node.Children[i].StartTime < node.Children[j].StartTime
		})
		return node
	}

	roots := make([]model.Resource, 0, len(rootIdx))
	for _, ri := range rootIdx {
		roots = append(roots, attach(ri))
	}
	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].StartTime < roots[j].StartTime
	})
	return roots
}

// flattenPreOrder lists the tree depth-first, parents before children.
func flattenPreOrder(roots []model.Resource) []model.Resource {
	var flat []model.Resource
	var walk func(node model.Resource)
	walk = func(node model.Resource) {
		flat = append(flat, node)
		for _, child := range node.Children {
			walk(child)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	return flat
}

// navigationTypeFor prefers the explicit navigation event; otherwise it
// falls back to heuristics over the span mix. The heuristic priority order
// can misclassify mixed RSC+full-render traces and is kept as observed.
func navigationTypeFor(event *model.NavigationEvent, resources []model.Resource) model.NavigationType {
	if event != nil && event.NavigationType != "" {
		return event.NavigationType
	}
	return classifyNavigationType(resources)
}

func classifyNavigationType(resources []model.Resource) model.NavigationType {
	var clientCount, serverCount int
	var minClientStart, minServerStart float64
	var hasDocument, hasRsc bool
	for i := range resources {
		r := &resources[i]
		switch r.Origin {
		case model.OriginClient:
			if clientCount == 0 || r.StartTime < minClientStart {
				minClientStart = r.StartTime
			}
			clientCount++
		case model.OriginServer:
			if serverCount == 0 || r.StartTime < minServerStart {
				minServerStart = r.StartTime
			}
			serverCount++
		}
		if r.Type == model.ResourceDocument {
			hasDocument = true
		}
		if r.Type == model.ResourceRsc || hasRscMarker(r.RawSpan, r.Url) {
			hasRsc = true
		}
	}

	if serverCount == 0 && clientCount > 0 {
		return model.NavigationNavigate
	}
	if hasDocument && !hasRsc {
		return model.NavigationInitial
	}
	if hasRsc && !hasDocument {
		return model.NavigationNavigate
	}
	if clientCount > 0 && serverCount > 0 && minClientStart < minServerStart {
		return model.NavigationNavigate
	}
	return model.NavigationInitial
}

// extractRoute favors explicit attributes over derived ones, in priority
// order across all resources before falling to the next rule.
func extractRoute(resources []model.Resource, event *model.NavigationEvent) string {
	if event != nil && event.Route != "" {
		return event.Route
	}
	usablePath := func(path string) bool {
		return path != "" && path != "/" && !strings.Contains(path, "[")
	}
	for i := range resources {
		if path := resources[i].StringAttr(common.NextPathnameAttrKey); usablePath(path) {
			return path
		}
	}
	for i := range resources {
		if path := utils.ExtractPath(resources[i].Url); usablePath(path) {
			return path
		}
	}
	for i := range resources {
		if target := resources[i].StringAttr(common.HTTPTargetAttrKey); target != "" {
			return utils.ExtractPath(target)
		}
	}
	for i := range resources {
		if route := resources[i].StringAttr(common.NextRouteAttrKey); route != "" {
			return route
		}
	}
	if len(resources) > 0 && utils.LooksLikePath(resources[0].Name) {
		return resources[0].Name
	}
	return "/unknown"
}

func extractUrl(resources []model.Resource, event *model.NavigationEvent) string {
	if event != nil && event.Url != "" {
		return event.Url
	}
	for i := range resources {
		if resources[i].Url != "" {
			return resources[i].Url
		}
	}
	return extractRoute(resources, event)
}

func extractProjectId(spans []model.RawSpan, event *model.NavigationEvent) string {
	if event != nil && event.ProjectId != "" {
		return event.ProjectId
	}
	for _, span := range spans {
		if span.ProjectId != "" {
			return span.ProjectId
		}
		if tagged := span.StringAttr(common.ProjectIdAttrKey); tagged != "" {
			return tagged
		}
	}
	return ""
}

// computeStats is a single linear pass; the slowest resource is the one
// with the largest duration, first seen winning ties.
func computeStats(resources []model.Resource) model.SessionStats {
	stats := model.SessionStats{TotalResources: len(resources)}
	if len(resources) == 0 {
		return stats
	}
	minStart := resources[0].StartTime
	maxEnd := resources[0].EndTime
	slowest := 0
	for i := range resources {
		r := &resources[i]
		switch r.Origin {
		case model.OriginClient:
			stats.ClientResources++
		case model.OriginServer:
			stats.ServerResources++
		}
		if r.Status == model.StatusError {
			stats.ErrorCount++
		}
		if r.Cached {
			stats.CachedCount++
		}
		if r.StartTime < minStart {
			minStart = r.StartTime
		}
		if r.EndTime > maxEnd {
			maxEnd = r.EndTime
		}
		if r.Duration > resources[slowest].Duration {
			slowest = i
		}
	}
	stats.TotalDuration = maxEnd - minStart
	slowestCopy := resources[slowest]
	slowestCopy.Children = nil
	stats.SlowestResource = &slowestCopy
	return stats
}
