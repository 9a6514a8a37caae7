package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pagelens/pagelens-observer/config"
	"github.com/pagelens/pagelens-observer/model"
	logger "github.com/zerok-ai/zk-utils-go/logs"
)

var sessionRedisHandlerLogTag = "SessionRedisHandler"

const sessionsDBName = "sessions"

// SessionRedisHandler persists every rebuilt page session as JSON under its
// session id. Sessions are overwritten wholesale on each rebuild, matching
// the build model.
type SessionRedisHandler struct {
	redisHandler *RedisHandler
	ctx          context.Context
	config       *config.AppConfig
}

func NewSessionRedisHandler(appConfig *config.AppConfig) (*SessionRedisHandler, error) {
	redisHandler, err := NewRedisHandler(&appConfig.Redis, sessionsDBName, appConfig.Redis.SyncDuration, appConfig.Redis.BatchSize, sessionRedisHandlerLogTag)
	if err != nil {
		logger.Error(sessionRedisHandlerLogTag, "Error while creating redis client ", err)
		return nil, err
	}

	return &SessionRedisHandler{
		redisHandler: redisHandler,
		ctx:          context.Background(),
		config:       appConfig,
	}, nil
}

func (h *SessionRedisHandler) PutSessionData(session *model.PageSession) error {
	if err := h.redisHandler.CheckRedisConnection(); err != nil {
		logger.Error(sessionRedisHandlerLogTag, "Error while checking redis conn ", err)
		return err
	}
	payload, err := json.Marshal(session)
	if err != nil {
		logger.Debug(sessionRedisHandlerLogTag, "Error encoding session for sessionId ", session.Id, " ", err)
		return err
	}
	ttl := time.Duration(h.config.Sessions.Ttl) * time.Second
	if err := h.redisHandler.SetPipeline(session.Id, payload, ttl); err != nil {
		logger.Error(sessionRedisHandlerLogTag, "Error while setting session data ", err)
		return err
	}
	h.redisHandler.SyncPipeline()
	return nil
}

func (h *SessionRedisHandler) Shutdown() {
	h.redisHandler.Shutdown()
}
