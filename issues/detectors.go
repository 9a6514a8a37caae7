package issues

import (
	"fmt"
	"strings"

	"github.com/pagelens/pagelens-observer/common"
	"github.com/pagelens/pagelens-observer/model"
)

// SequentialWaterfallDetector reports runs of resources that executed back
// to back across the whole session.
type SequentialWaterfallDetector struct{}

func (d *SequentialWaterfallDetector) Definition() model.IssueDefinition {
	return model.IssueDefinition{
		Type:            model.IssueSequentialWaterfall,
		Title:           "Sequential request waterfall",
		DefaultSeverity: model.SeverityWarning,
	}
}

func (d *SequentialWaterfallDetector) Detect(session *model.PageSession) *model.IssueMatch {
	chains := DetectWaterfalls(session.Resources, DefaultWaterfallOptions())
	if len(chains) == 0 {
		return nil
	}
	var totalWasted float64
	for _, chain := range chains {
		totalWasted += chain.WastedTime
	}
	return &model.IssueMatch{
		Severity:     waterfallSeverity(totalWasted),
		TimeImpactMs: totalWasted,
		Chains:       chains,
	}
}

func (d *SequentialWaterfallDetector) Suggest(match *model.IssueMatch) model.IssueSuggestion {
	longest := match.Chains[0]
	return model.IssueSuggestion{
		Summary: fmt.Sprintf("%d requests ran serially; parallelizing would save ~%.0fms", len(longest.Resources), match.TimeImpactMs),
		Explanation: "Each request in the chain only starts after the previous one finishes. " +
			"When the requests do not depend on each other's responses, issuing them together removes all but the longest from the critical path.",
		Example: "const [a, b] = await Promise.all([fetchA(), fetchB()])",
	}
}

// ParentChildWaterfallDetector reports a parent request that fully blocks
// its most expensive child.
type ParentChildWaterfallDetector struct{}

func (d *ParentChildWaterfallDetector) Definition() model.IssueDefinition {
	return model.IssueDefinition{
		Type:            model.IssueParentChildWaterfall,
		Title:           "Parent request blocks child",
		DefaultSeverity: model.SeverityWarning,
	}
}

func (d *ParentChildWaterfallDetector) Detect(session *model.PageSession) *model.IssueMatch {
	pair := DetectParentChildWaterfall(session.RootResources)
	if pair == nil {
		return nil
	}
	return &model.IssueMatch{
		Severity:     waterfallSeverity(pair.WastedTime),
		TimeImpactMs: pair.WastedTime,
		Resources:    []model.Resource{pair.Parent, pair.Child},
	}
}

func (d *ParentChildWaterfallDetector) Suggest(match *model.IssueMatch) model.IssueSuggestion {
	parent := match.Resources[0]
	child := match.Resources[1]
	return model.IssueSuggestion{
		Summary: fmt.Sprintf("%s waits for the whole of %s (~%.0fms blocked)", displayName(child), displayName(parent), match.TimeImpactMs),
		Explanation: "The child request only starts once its parent has completely finished. " +
			"If the child does not need the parent's response, start both together; otherwise move the dependency to the smallest piece of data the child actually needs.",
		Example: "// kick off the child before awaiting the parent\nconst childPromise = fetchChild()\nconst parent = await fetchParent()\nconst child = await childPromise",
	}
}

// SequentialInitiatorDetector reports serial chains issued from the same
// source location.
type SequentialInitiatorDetector struct{}

func (d *SequentialInitiatorDetector) Definition() model.IssueDefinition {
	return model.IssueDefinition{
		Type:            model.IssueSequentialInitiator,
		Title:           "Serial requests from one call site",
		DefaultSeverity: model.SeverityWarning,
	}
}

func (d *SequentialInitiatorDetector) Detect(session *model.PageSession) *model.IssueMatch {
	chains := DetectSequentialByInitiator(session.Resources)
	if len(chains) == 0 {
		return nil
	}
	var totalWasted float64
	for _, chain := range chains {
		totalWasted += chain.WastedTime
	}
	return &model.IssueMatch{
		Severity:     waterfallSeverity(totalWasted),
		TimeImpactMs: totalWasted,
		Chains:       chains,
	}
}

func (d *SequentialInitiatorDetector) Suggest(match *model.IssueMatch) model.IssueSuggestion {
	initiator := ""
	if len(match.Chains) > 0 && len(match.Chains[0].Resources) > 0 {
		initiator = match.Chains[0].Resources[0].Initiator
	}
	return model.IssueSuggestion{
		Summary:     fmt.Sprintf("One call site (%s) issues requests one after another; ~%.0fms recoverable", initiator, match.TimeImpactMs),
		Explanation: "Requests from the same source location ran strictly in sequence, which usually means an await inside a loop.",
		Example:     "await Promise.all(items.map((item) => fetchItem(item.id)))",
	}
}

// NPlusOneDetector reports repeated near-identical requests differing only
// by an identifier.
type NPlusOneDetector struct{}

func (d *NPlusOneDetector) Definition() model.IssueDefinition {
	return model.IssueDefinition{
		Type:            model.IssueNPlusOne,
		Title:           "N+1 request storm",
		DefaultSeverity: model.SeverityWarning,
	}
}

func (d *NPlusOneDetector) Detect(session *model.PageSession) *model.IssueMatch {
	patterns := DetectNPlusOne(session.Resources, defaultNPlusOneMinCount)
	if len(patterns) == 0 {
		return nil
	}
	var totalDuration float64
	for _, pattern := range patterns {
		totalDuration += pattern.TotalDuration
	}
	severity := model.SeverityWarning
	if totalDuration > 500 || patterns[0].Count >= 10 {
		severity = model.SeverityCritical
	}
	return &model.IssueMatch{
		Severity:     severity,
		TimeImpactMs: totalDuration,
		Patterns:     patterns,
	}
}

func (d *NPlusOneDetector) Suggest(match *model.IssueMatch) model.IssueSuggestion {
	top := match.Patterns[0]
	return model.IssueSuggestion{
		Summary:     fmt.Sprintf("%d requests match %s (%.0fms total)", top.Count, top.Pattern, top.TotalDuration),
		Explanation: "The same endpoint is hit once per item instead of once per collection. Batch the lookups into a single request or a list endpoint.",
		Example:     "GET /api/users?ids=1,2,3  // instead of GET /api/users/:id per item",
	}
}

// UncachedFetchDetector flags idempotent server-side fetches that took
// meaningful time and were not served from a cache.
type UncachedFetchDetector struct{}

const uncachedMinDurationMs = 30

var mutationVerbs = []string{"mutation", "create", "update", "delete", "insert", "upsert", "remove"}

func (d *UncachedFetchDetector) Definition() model.IssueDefinition {
	return model.IssueDefinition{
		Type:            model.IssueUncachedFetch,
		Title:           "Uncached server fetch",
		DefaultSeverity: model.SeverityInfo,
	}
}

func (d *UncachedFetchDetector) Detect(session *model.PageSession) *model.IssueMatch {
	var flagged []model.Resource
	var totalDuration float64
	for i := range session.Resources {
		r := session.Resources[i]
		if r.Origin != model.OriginServer || r.Cached || r.Duration <= uncachedMinDurationMs {
			continue
		}
		switch r.Type {
		case model.ResourceFetch, model.ResourceApi, model.ResourceExternal:
		default:
			continue
		}
		if !looksIdempotent(r) {
			continue
		}
		r.Children = nil
		flagged = append(flagged, r)
		totalDuration += r.Duration
	}
	if len(flagged) == 0 {
		return nil
	}
	severity := model.SeverityInfo
	if totalDuration > 500 {
		severity = model.SeverityCritical
	} else if len(flagged) > 5 {
		severity = model.SeverityWarning
	}
	return &model.IssueMatch{
		Severity:     severity,
		TimeImpactMs: totalDuration,
		Resources:    flagged,
	}
}

func (d *UncachedFetchDetector) Suggest(match *model.IssueMatch) model.IssueSuggestion {
	return model.IssueSuggestion{
		Summary:     fmt.Sprintf("%d server fetches bypass the cache (%.0fms total)", len(match.Resources), match.TimeImpactMs),
		Explanation: "These GET requests repeat on every render because no cache or revalidation window covers them.",
		Example:     "fetch(url, { next: { revalidate: 60 } })",
	}
}

func looksIdempotent(r model.Resource) bool {
	method := strings.ToUpper(r.StringAttr(common.HTTPMethodAttrKey))
	if method != "" && method != "GET" {
		return false
	}
	name := strings.ToLower(r.Name)
	for _, verb := range mutationVerbs {
		if strings.Contains(name, verb) {
			return false
		}
	}
	return true
}

func displayName(r model.Resource) string {
	if r.Url != "" {
		return r.Url
	}
	return r.Name
}
