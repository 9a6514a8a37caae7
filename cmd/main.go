package main

import (
	_ "expvar"
	"flag"
	"time"

	"github.com/pagelens/pagelens-observer/config"
	"github.com/pagelens/pagelens-observer/handler"
	"github.com/pagelens/pagelens-observer/server"
	"github.com/pagelens/pagelens-observer/sessions"
	badgerStore "github.com/pagelens/pagelens-observer/stores/badger"
	redisStore "github.com/pagelens/pagelens-observer/stores/redis"
	"github.com/pagelens/pagelens-observer/stream"
	logger "github.com/zerok-ai/zk-utils-go/logs"
)

var mainLogTag = "main"

func main() {
	configPath := flag.String("c", "config/config.yaml", "config file path")
	flag.Parse()

	appConfig, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal(mainLogTag, "Error while loading config: ", err)
		return
	}

	broker := stream.NewBroker(time.Duration(appConfig.Sessions.DebounceMs) * time.Millisecond)
	defer broker.Close()

	sink := createSink(appConfig)
	manager := sessions.NewSessionManager(broker, sink, appConfig.Sessions.MaxSessions)

	traceHandler := handler.NewTraceHandler(manager)
	navigationHandler := handler.NewNavigationHandler(manager)
	sessionHandler := handler.NewSessionHandler(manager, broker)

	grpcServer := &server.GrpcServer{TraceHandler: traceHandler}
	go func() {
		if err := grpcServer.Run(appConfig.GrpcPort); err != nil {
			logger.Error(mainLogTag, "Grpc server stopped: ", err)
		}
	}()

	httpServer := server.NewHTTPServer()
	httpServer.ConfigureRoutes(traceHandler, navigationHandler, sessionHandler)
	if err := httpServer.Run(appConfig); err != nil {
		logger.Error(mainLogTag, "Error starting the server: ", err)
	}
}

func createSink(appConfig *config.AppConfig) sessions.SessionSink {
	switch appConfig.Storage {
	case "redis":
		sink, err := redisStore.NewSessionRedisHandler(appConfig)
		if err != nil {
			logger.Error(mainLogTag, "Error while creating redis session store, continuing without persistence: ", err)
			return nil
		}
		return sink
	case "badger":
		sink, err := badgerStore.NewSessionBadgerHandler(appConfig)
		if err != nil {
			logger.Error(mainLogTag, "Error while creating badger session store, continuing without persistence: ", err)
			return nil
		}
		return sink
	}
	return nil
}
