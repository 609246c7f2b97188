package handler

import (
	"net/http"

	"fleet/config"
	"fleet/di"
	"fleet/shared/logger"
)

func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	service := di.InitializeService()
	service.Adaptor().ServeHTTP(w, r)
}
