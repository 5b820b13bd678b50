package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Serve binds addr and serves h until the process exits. There is no drain
// on shutdown; in-flight requests end with the process.
func Serve(addr string, h http.Handler, logger *zap.Logger) error {
	server := http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	err := server.ListenAndServe()
	if err != nil {
		logger.Error("server stopped", zap.String("addr", addr), zap.Error(err))
	}
	return err
}
