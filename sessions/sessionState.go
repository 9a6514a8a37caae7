package sessions

import (
	"sort"

	"github.com/pagelens/pagelens-observer/model"
)

// SessionState owns everything known so far: raw spans by id, span-id sets
// per session, the orphan set, built sessions and pending navigation events.
// It is not safe for concurrent use; SessionManager serializes access.
type SessionState struct {
	spans            map[string]model.RawSpan
	sessionSpans     map[string]map[string]struct{}
	orphanSpans      map[string]struct{}
	sessions         map[string]*model.PageSession
	navigationEvents map[string]*model.NavigationEvent
}

func NewSessionState() *SessionState {
	state := &SessionState{}
	state.Clear()
	return state
}

// Clear resets all five collections atomically. Used when the user starts a
// fresh recording.
func (st *SessionState) Clear() {
	st.spans = map[string]model.RawSpan{}
	st.sessionSpans = map[string]map[string]struct{}{}
	st.orphanSpans = map[string]struct{}{}
	st.sessions = map[string]*model.PageSession{}
	st.navigationEvents = map[string]*model.NavigationEvent{}
}

func (st *SessionState) Span(id string) (model.RawSpan, bool) {
	span, ok := st.spans[id]
	return span, ok
}

func (st *SessionState) PutSpan(span model.RawSpan) {
	st.spans[span.Id] = span
}

// SessionSpanIds returns the ids assigned to a session, unordered.
func (st *SessionState) SessionSpanIds(sessionId string) []string {
	ids := make([]string, 0, len(st.sessionSpans[sessionId]))
	for id := range st.sessionSpans[sessionId] {
		ids = append(ids, id)
	}
	return ids
}

// SessionSpans returns the raw spans assigned to a session.
func (st *SessionState) SessionSpans(sessionId string) []model.RawSpan {
	spans := make([]model.RawSpan, 0, len(st.sessionSpans[sessionId]))
	for id := range st.sessionSpans[sessionId] {
		if span, ok := st.spans[id]; ok {
			spans = append(spans, span)
		}
	}
	return spans
}

func (st *SessionState) AddSpanToSession(sessionId string, spanId string) {
	set, ok := st.sessionSpans[sessionId]
	if !ok {
		set = map[string]struct{}{}
		st.sessionSpans[sessionId] = set
	}
	set[spanId] = struct{}{}
}

func (st *SessionState) AddOrphan(spanId string) {
	st.orphanSpans[spanId] = struct{}{}
}

func (st *SessionState) RemoveOrphan(spanId string) {
	delete(st.orphanSpans, spanId)
}

func (st *SessionState) IsOrphan(spanId string) bool {
	_, ok := st.orphanSpans[spanId]
	return ok
}

// OrphanIds returns the current orphan set in deterministic order so that
// retry passes resolve spans in a stable sequence.
func (st *SessionState) OrphanIds() []string {
	ids := make([]string, 0, len(st.orphanSpans))
	for id := range st.orphanSpans {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (st *SessionState) OrphanCount() int {
	return len(st.orphanSpans)
}

func (st *SessionState) PutSession(session *model.PageSession) {
	st.sessions[session.Id] = session
}

func (st *SessionState) Session(sessionId string) (*model.PageSession, bool) {
	session, ok := st.sessions[sessionId]
	return session, ok
}

func (st *SessionState) DeleteSession(sessionId string) {
	delete(st.sessions, sessionId)
}

// Sessions returns built sessions sorted by navigationStart descending.
func (st *SessionState) Sessions() []*model.PageSession {
	list := make([]*model.PageSession, 0, len(st.sessions))
	for _, session := range st.sessions {
		list = append(list, session)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Timing.NavigationStart > list[j].Timing.NavigationStart
	})
	return list
}

func (st *SessionState) SessionCount() int {
	return len(st.sessions)
}

func (st *SessionState) PutNavigationEvent(event *model.NavigationEvent) {
	st.navigationEvents[event.SessionId] = event
}

func (st *SessionState) NavigationEvent(sessionId string) (*model.NavigationEvent, bool) {
	event, ok := st.navigationEvents[sessionId]
	return event, ok
}

// EnforceLimit drops all but the newest max sessions by navigationStart,
// removing their span sets, raw spans and navigation events too. A dropped
// session's resources are unrecoverable. Returns the ids evicted.
func (st *SessionState) EnforceLimit(max int) []string {
	if max <= 0 || len(st.sessions) <= max {
		return nil
	}
	ordered := st.Sessions()
	var evicted []string
	for _, session := range ordered[max:] {
		for spanId := range st.sessionSpans[session.Id] {
			delete(st.spans, spanId)
			delete(st.orphanSpans, spanId)
		}
		delete(st.sessionSpans, session.Id)
		delete(st.navigationEvents, session.Id)
		delete(st.sessions, session.Id)
		evicted = append(evicted, session.Id)
	}
	return evicted
}
