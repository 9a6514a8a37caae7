package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kataras/iris/v12"
	"github.com/pagelens/pagelens-observer/issues"
	"github.com/pagelens/pagelens-observer/sessions"
	"github.com/pagelens/pagelens-observer/stream"
	logger "github.com/zerok-ai/zk-utils-go/logs"
)

var sessionLogTag = "SessionHandler"

// SessionHandler serves the reconstructed sessions and detected issues to
// the UI and tool consumers, plus a debounced SSE stream of updates.
type SessionHandler struct {
	manager *sessions.SessionManager
	broker  *stream.Broker
}

func NewSessionHandler(manager *sessions.SessionManager, broker *stream.Broker) *SessionHandler {
	return &SessionHandler{manager: manager, broker: broker}
}

func (sh *SessionHandler) ListSessions(ctx iris.Context) {
	_ = ctx.JSON(iris.Map{"sessions": sh.manager.Sessions()})
}

func (sh *SessionHandler) GetSession(ctx iris.Context) {
	sessionId := ctx.Params().Get("sessionId")
	session, ok := sh.manager.Session(sessionId)
	if !ok {
		ctx.StatusCode(iris.StatusNotFound)
		_ = ctx.JSON(iris.Map{"error": "session not found"})
		return
	}
	_ = ctx.JSON(session)
}

func (sh *SessionHandler) GetSessionIssues(ctx iris.Context) {
	sessionId := ctx.Params().Get("sessionId")
	session, ok := sh.manager.Session(sessionId)
	if !ok {
		ctx.StatusCode(iris.StatusNotFound)
		_ = ctx.JSON(iris.Map{"error": "session not found"})
		return
	}
	found := issues.RunDetectors(&session, issues.DefaultDetectors())
	_ = ctx.JSON(iris.Map{"issues": found})
}

func (sh *SessionHandler) ListIssues(ctx iris.Context) {
	_ = ctx.JSON(iris.Map{"issues": issues.RunAll(sh.manager.Sessions())})
}

// Clear resets all correlation state for a fresh recording.
func (sh *SessionHandler) Clear(ctx iris.Context) {
	sh.manager.Clear()
	logger.Info(sessionLogTag, "Session state cleared")
	ctx.StatusCode(iris.StatusOK)
}

// Stream pushes coalesced session updates over SSE until the client goes
// away. Unsubscribing never affects ingestion.
func (sh *SessionHandler) Stream(ctx iris.Context) {
	flusher, ok := ctx.ResponseWriter().Naive().(http.Flusher)
	if !ok {
		ctx.StatusCode(iris.StatusHTTPVersionNotSupported)
		return
	}

	ctx.ContentType("text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")

	subscriberId, updates := sh.broker.Subscribe()
	defer sh.broker.Unsubscribe(subscriberId)
	logger.Debug(sessionLogTag, "Stream subscriber connected: ", subscriberId)

	done := ctx.Request().Context().Done()
	for {
		select {
		case <-done:
			return
		case update, open := <-updates:
			if !open {
				return
			}
			payload, err := json.Marshal(update)
			if err != nil {
				logger.Error(sessionLogTag, "Error encoding stream update ", err)
				continue
			}
			if _, err = fmt.Fprintf(ctx.ResponseWriter(), "data: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
