package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/pagelens/pagelens-observer/config"
	"github.com/redis/go-redis/v9"
	logger "github.com/zerok-ai/zk-utils-go/logs"
	zktick "github.com/zerok-ai/zk-utils-go/ticker"
)

var redisHandlerLogTag = "RedisHandler"

// RedisHandler batches writes through a pipeline that is flushed either on
// batch size or on a sync ticker, whichever comes first.
type RedisHandler struct {
	RedisClient  *redis.Client
	ctx          context.Context
	config       *config.RedisConfig
	dbName       string
	Pipeline     redis.Pipeliner
	ticker       *zktick.TickerTask
	count        int
	startTime    time.Time
	batchSize    int
	syncInterval int
	tag          string
}

func NewRedisHandler(redisConfig *config.RedisConfig, dbName string, syncInterval int, batchSize int, tag string) (*RedisHandler, error) {
	handler := RedisHandler{
		ctx:    context.Background(),
		config: redisConfig,
		dbName: dbName,
	}

	err := handler.InitializeRedisConn()
	if err != nil {
		logger.Error(redisHandlerLogTag, "Error while initializing redis connection ", err)
		return nil, err
	}

	handler.Pipeline = handler.RedisClient.Pipeline()

	timerDuration := time.Duration(syncInterval) * time.Second
	handler.ticker = zktick.GetNewTickerTask("sync_pipeline", timerDuration, handler.SyncPipeline)
	handler.ticker.Start()

	handler.syncInterval = syncInterval
	handler.batchSize = batchSize
	handler.startTime = time.Now()
	handler.tag = tag

	return &handler, nil
}

func (h *RedisHandler) InitializeRedisConn() error {
	db := h.config.DBs[h.dbName]
	redisAddr := h.config.Host + ":" + h.config.Port
	opt := &redis.Options{
		Addr:     redisAddr,
		Password: h.config.Password,
		DB:       db,
	}
	h.RedisClient = redis.NewClient(opt)
	return h.PingRedis()
}

func (h *RedisHandler) PingRedis() error {
	if h.RedisClient == nil {
		logger.Error(redisHandlerLogTag, "Redis client is nil.")
		return fmt.Errorf("redis client is nil")
	}
	if err := h.RedisClient.Ping(context.Background()).Err(); err != nil {
		logger.Error(redisHandlerLogTag, "Error caught while pinging redis ", err)
		return err
	}
	return nil
}

func (h *RedisHandler) CheckRedisConnection() error {
	err := h.PingRedis()
	if err != nil {
		if err = h.CloseConnection(); err != nil {
			logger.Error(redisHandlerLogTag, "Failed to close Redis connection: ", err)
			return err
		}
		if err = h.InitializeRedisConn(); err != nil {
			logger.Error(redisHandlerLogTag, "Error while initializing redis connection ", err)
			return err
		}
	}
	return nil
}

func (h *RedisHandler) SetPipeline(key string, value interface{}, expiration time.Duration) error {
	cmd := h.Pipeline.Set(h.ctx, key, value, expiration)
	if cmd.Err() != nil {
		return cmd.Err()
	}
	h.count++
	return nil
}

func (h *RedisHandler) HMSetPipeline(key string, value map[string]string, expiration time.Duration) error {
	cmd := h.Pipeline.HMSet(h.ctx, key, value)
	if cmd.Err() != nil {
		return cmd.Err()
	}
	if expiration > 0 {
		if cmd := h.Pipeline.Expire(h.ctx, key, expiration); cmd.Err() != nil {
			return cmd.Err()
		}
	}
	h.count++
	return nil
}

func (h *RedisHandler) SyncPipeline() {
	syncDuration := time.Duration(h.syncInterval) * time.Second
	if h.count > h.batchSize || time.Since(h.startTime) >= syncDuration {
		_, err := h.Pipeline.Exec(h.ctx)
		if err != nil {
			logger.Error(redisHandlerLogTag, "Error while syncing data to redis ", err)
			return
		}
		logger.Debug(redisHandlerLogTag, "Pipeline synchronized on batchsize/syncDuration for tag ", h.tag)

		h.count = 0
		h.startTime = time.Now()
	}
}

func (h *RedisHandler) CloseConnection() error {
	return h.RedisClient.Close()
}

func (h *RedisHandler) Shutdown() {
	if _, err := h.Pipeline.Exec(h.ctx); err != nil {
		logger.Error(redisHandlerLogTag, "Error while force syncing data to redis ", err)
	}
	if err := h.CloseConnection(); err != nil {
		logger.Error(redisHandlerLogTag, "Error while closing redis conn.")
	}
}
