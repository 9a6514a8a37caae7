package badger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pagelens/pagelens-observer/config"
	"github.com/pagelens/pagelens-observer/model"
	logger "github.com/zerok-ai/zk-utils-go/logs"
	"github.com/zerok-ai/zk-utils-go/storage/badger"
)

var sessionBadgerHandlerLogTag = "SessionBadgerHandler"

// SessionBadgerHandler is the local-disk alternative to the redis sink,
// used in single-process dev setups where no redis is running.
type SessionBadgerHandler struct {
	badgerHandler *badger.BadgerStoreHandler
	ctx           context.Context
	config        *config.AppConfig
}

func NewSessionBadgerHandler(appConfig *config.AppConfig) (*SessionBadgerHandler, error) {
	badgerHandler, err := badger.NewBadgerHandler(&appConfig.Badger)
	if err != nil {
		logger.Error(sessionBadgerHandlerLogTag, "Error while creating badger client ", err)
		return nil, err
	}

	return &SessionBadgerHandler{
		badgerHandler: badgerHandler,
		ctx:           context.Background(),
		config:        appConfig,
	}, nil
}

func (h *SessionBadgerHandler) PutSessionData(session *model.PageSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		logger.Debug(sessionBadgerHandlerLogTag, "Error encoding session for sessionId ", session.Id, " ", err)
		return err
	}
	ttl := int64(h.config.Sessions.Ttl)
	if err := h.badgerHandler.Set(session.Id, string(payload), ttl); err != nil {
		logger.ErrorF(sessionBadgerHandlerLogTag, "Error while setting session data for key %s with error %v", session.Id, err)
		return err
	}
	return nil
}

// GetSessionData loads one persisted session back from disk.
func (h *SessionBadgerHandler) GetSessionData(sessionId string) (*model.PageSession, error) {
	value, err := h.badgerHandler.Get(sessionId)
	if err != nil {
		logger.Error(sessionBadgerHandlerLogTag, fmt.Sprintf("Error while fetching session data for key: %s", sessionId), err)
		return nil, err
	}
	var session model.PageSession
	if err := json.Unmarshal([]byte(value), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (h *SessionBadgerHandler) SyncPipeline() {
	h.badgerHandler.StartCompaction()
}
