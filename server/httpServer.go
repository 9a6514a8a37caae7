package server

import (
	"net/http"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/pagelens/pagelens-observer/config"
	"github.com/pagelens/pagelens-observer/handler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var httpServerLogTag = "httpServer"

type HTTPServer struct {
	app *iris.Application
}

func NewHTTPServer() *HTTPServer {
	return &HTTPServer{
		app: newApp(),
	}
}

func (s *HTTPServer) ConfigureRoutes(traceHandler *handler.TraceHandler, navigationHandler *handler.NavigationHandler, sessionHandler *handler.SessionHandler) {
	s.app.Get("/metrics", iris.FromStd(promhttp.Handler()))
	s.app.Get("/debug/vars", iris.FromStd(http.DefaultServeMux))
	s.app.Get("/healthz", func(ctx iris.Context) {
		ctx.StatusCode(iris.StatusOK)
	})

	s.app.Post("/v1/traces", traceHandler.ServeHTTP)
	s.app.Post("/v1/navigation", navigationHandler.ServeHTTP)
	s.app.Post("/v1/clear", sessionHandler.Clear)

	s.app.Get("/v1/sessions", sessionHandler.ListSessions)
	s.app.Get("/v1/sessions/{sessionId}", sessionHandler.GetSession)
	s.app.Get("/v1/sessions/{sessionId}/issues", sessionHandler.GetSessionIssues)
	s.app.Get("/v1/issues", sessionHandler.ListIssues)
	s.app.Get("/v1/stream", sessionHandler.Stream)
}

func (s *HTTPServer) Run(appConfig *config.AppConfig) error {
	srv := &http.Server{
		Addr:        ":" + appConfig.Port,
		ReadTimeout: 30 * time.Second,
		// No write timeout: /v1/stream holds its response open.
	}
	irisConfig := iris.WithConfiguration(iris.Configuration{
		DisablePathCorrection: true,
		LogLevel:              appConfig.Logs.Level,
	})

	return s.app.Run(iris.Server(srv), irisConfig)
}

func newApp() *iris.Application {
	app := iris.Default()

	crs := func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Credentials", "true")

		if ctx.Method() == iris.MethodOptions {
			ctx.Header("Access-Control-Methods", "POST")
			ctx.Header("Access-Control-Allow-Headers",
				"Access-Control-Allow-Origin,Content-Type")
			ctx.Header("Access-Control-Max-Age", "86400")
			ctx.StatusCode(iris.StatusNoContent)
			return
		}

		ctx.Next()
	}
	app.UseRouter(crs)
	app.AllowMethods(iris.MethodOptions)

	return app
}
