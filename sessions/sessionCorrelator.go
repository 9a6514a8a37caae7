package sessions

import (
	"github.com/pagelens/pagelens-observer/common"
	"github.com/pagelens/pagelens-observer/metrics"
	"github.com/pagelens/pagelens-observer/model"
)

// SessionCorrelator assigns each incoming span to exactly one session, or
// parks it in the orphan set until its ancestor chain becomes resolvable.
type SessionCorrelator struct {
	state *SessionState
}

func NewSessionCorrelator(state *SessionState) *SessionCorrelator {
	return &SessionCorrelator{state: state}
}

// FindSessionId resolves the owning session of a span: its own session tag
// if present, otherwise the first tagged ancestor reachable through
// already-ingested parents. Returns "" while the chain is unresolved.
func (c *SessionCorrelator) FindSessionId(span model.RawSpan) string {
	if span.SessionId != "" {
		return span.SessionId
	}
	if tagged := span.StringAttr(common.SessionIdAttrKey); tagged != "" {
		return tagged
	}
	seen := map[string]struct{}{span.Id: {}}
	parentId := span.ParentId
	for parentId != "" {
		if _, cycle := seen[parentId]; cycle {
			return ""
		}
		seen[parentId] = struct{}{}
		parent, ok := c.state.Span(parentId)
		if !ok {
			return ""
		}
		if parent.SessionId != "" {
			return parent.SessionId
		}
		if tagged := parent.StringAttr(common.SessionIdAttrKey); tagged != "" {
			return tagged
		}
		parentId = parent.ParentId
	}
	return ""
}

// Assign resolves the owning session for an already-stored span. On success
// the span joins that session's set and leaves the orphan set.
func (c *SessionCorrelator) Assign(spanId string) (string, bool) {
	span, ok := c.state.Span(spanId)
	if !ok {
		return "", false
	}
	sessionId := c.FindSessionId(span)
	if sessionId == "" {
		return "", false
	}
	c.state.AddSpanToSession(sessionId, spanId)
	c.state.RemoveOrphan(spanId)
	return sessionId, true
}

// Ingest stores a span and attempts assignment, then unconditionally
// retries every currently orphaned span: a later-arriving parent may
// resolve several earlier orphans at once, and a span's own resolution may
// depend on spans ingested after it. Returns the set of session ids whose
// span sets changed.
//
// The retry is O(orphans) per ingested span. Under sustained ingest with
// many unresolvable spans this is effectively quadratic; kept as is because
// reordering retries would change observable session contents.
func (c *SessionCorrelator) Ingest(span model.RawSpan) map[string]struct{} {
	c.state.PutSpan(span)

	changed := map[string]struct{}{}
	if sessionId, ok := c.Assign(span.Id); ok {
		changed[sessionId] = struct{}{}
	} else {
		if !c.state.IsOrphan(span.Id) {
			metrics.TotalSpansOrphaned.Inc()
		}
		c.state.AddOrphan(span.Id)
	}

	for _, orphanId := range c.state.OrphanIds() {
		metrics.TotalOrphanRetries.Inc()
		if sessionId, ok := c.Assign(orphanId); ok {
			changed[sessionId] = struct{}{}
		}
	}
	return changed
}
