package handler

import (
	"github.com/kataras/iris/v12"
	"github.com/pagelens/pagelens-observer/metrics"
	"github.com/pagelens/pagelens-observer/model"
	"github.com/pagelens/pagelens-observer/sessions"
	logger "github.com/zerok-ai/zk-utils-go/logs"
)

var navigationLogTag = "NavigationHandler"

// NavigationHandler accepts navigation events from the client runtime.
// One event per user-perceived navigation; it may arrive before, with or
// after the spans of the session it describes.
type NavigationHandler struct {
	manager *sessions.SessionManager
}

func NewNavigationHandler(manager *sessions.SessionManager) *NavigationHandler {
	return &NavigationHandler{manager: manager}
}

func (nh *NavigationHandler) ServeHTTP(ctx iris.Context) {
	var event model.NavigationEvent
	if err := ctx.ReadJSON(&event); err != nil {
		metrics.TotalSpansMalformed.Inc()
		logger.Debug(navigationLogTag, "Invalid navigation event payload ", err)
		ctx.StatusCode(iris.StatusBadRequest)
		return
	}
	if event.SessionId == "" {
		ctx.StatusCode(iris.StatusBadRequest)
		return
	}
	nh.manager.IngestNavigationEvent(event)
	ctx.StatusCode(iris.StatusOK)
}
