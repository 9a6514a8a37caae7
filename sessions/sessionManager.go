package sessions

import (
	"sync"

	"github.com/pagelens/pagelens-observer/metrics"
	"github.com/pagelens/pagelens-observer/model"
	"github.com/pagelens/pagelens-observer/stream"
	logger "github.com/zerok-ai/zk-utils-go/logs"
)

var managerLogTag = "SessionManager"

// SessionSink receives every rebuilt session for optional persistence.
// Sink failures are logged and never fail ingestion.
type SessionSink interface {
	PutSessionData(session *model.PageSession) error
}

// SessionManager serializes all mutation of SessionState: spans and
// navigation events are applied strictly in arrival order under one mutex
// held for the whole ingest+rebuild cycle. Reads work on value snapshots
// taken after a write completes.
type SessionManager struct {
	mu          sync.Mutex
	state       *SessionState
	correlator  *SessionCorrelator
	broker      *stream.Broker
	sink        SessionSink
	maxSessions int
}

func NewSessionManager(broker *stream.Broker, sink SessionSink, maxSessions int) *SessionManager {
	state := NewSessionState()
	return &SessionManager{
		state:       state,
		correlator:  NewSessionCorrelator(state),
		broker:      broker,
		sink:        sink,
		maxSessions: maxSessions,
	}
}

// IngestSpan applies one span. Malformed spans are skipped without
// aborting the batch they arrived in.
func (m *SessionManager) IngestSpan(span model.RawSpan) {
	if span.Id == "" || span.TraceId == "" {
		metrics.TotalSpansMalformed.Inc()
		logger.Debug(managerLogTag, "Skipping span with missing id or traceId")
		return
	}
	if span.EndTime < span.StartTime {
		span.EndTime = span.StartTime
	}
	span.Duration = span.EndTime - span.StartTime

	m.mu.Lock()
	defer m.mu.Unlock()
	changed := m.correlator.Ingest(span)
	metrics.TotalSpansProcessed.WithLabelValues(span.ProjectId).Inc()
	m.rebuildLocked(changed)
}

// IngestNavigationEvent applies one navigation event and rebuilds the
// session it describes, whether or not its spans have arrived yet.
func (m *SessionManager) IngestNavigationEvent(event model.NavigationEvent) {
	if event.SessionId == "" {
		metrics.TotalSpansMalformed.Inc()
		logger.Debug(managerLogTag, "Skipping navigation event with missing sessionId")
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := event
	m.state.PutNavigationEvent(&stored)
	metrics.TotalNavigationEvents.Inc()
	m.rebuildLocked(map[string]struct{}{event.SessionId: {}})
}

func (m *SessionManager) rebuildLocked(changed map[string]struct{}) {
	if len(changed) == 0 {
		return
	}
	for sessionId := range changed {
		spans := m.state.SessionSpans(sessionId)
		event, _ := m.state.NavigationEvent(sessionId)
		session := BuildSession(sessionId, spans, event)
		if session == nil {
			// Nothing but noise assigned so far; an absence, not an error.
			m.state.DeleteSession(sessionId)
			continue
		}
		m.state.PutSession(session)
		metrics.TotalSessionsBuilt.Inc()
		if m.sink != nil {
			if err := m.sink.PutSessionData(session); err != nil {
				logger.Error(managerLogTag, "Error while persisting session ", sessionId, " ", err)
			}
		}
	}
	if evicted := m.state.EnforceLimit(m.maxSessions); len(evicted) > 0 {
		metrics.TotalSessionsEvicted.Add(float64(len(evicted)))
		logger.Debug(managerLogTag, "Evicted sessions over limit: ", evicted)
	}
	m.publishLocked()
}

func (m *SessionManager) publishLocked() {
	if m.broker == nil {
		return
	}
	m.broker.Publish(stream.Update{Sessions: m.snapshotLocked()})
}

func (m *SessionManager) snapshotLocked() []model.PageSession {
	ordered := m.state.Sessions()
	snapshot := make([]model.PageSession, 0, len(ordered))
	for _, session := range ordered {
		snapshot = append(snapshot, *session)
	}
	return snapshot
}

// Sessions returns the built sessions, newest navigation first.
func (m *SessionManager) Sessions() []model.PageSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *SessionManager) Session(sessionId string) (model.PageSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.state.Session(sessionId)
	if !ok {
		return model.PageSession{}, false
	}
	return *session, true
}

func (m *SessionManager) OrphanCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.OrphanCount()
}

// Clear resets all correlation state for a fresh recording and publishes
// the now-empty session list.
func (m *SessionManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Clear()
	m.publishLocked()
}
