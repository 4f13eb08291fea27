package handler

import (
	"net/http"
	"sync"

	"appointer/di"
	"appointer/shared/logger"
)

var (
	app     http.Handler
	appOnce sync.Once
)

// Handler is the serverless entry point. The dependency graph is built on the
// first request and reused by warm invocations.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	appOnce.Do(func() {
		application := di.InitializeApp()

		logger.InitLogger(application.Config.Server.Env)
		logger.SetLogLevel(application.Config)

		app = application.HTTP.Adaptor()
	})

	app.ServeHTTP(w, r)
}
