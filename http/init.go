package http

import (
	"github.com/esimov/ascii-cam/config"
	"github.com/esimov/ascii-cam/websocket"
)

// Params converts the server section of the config into server parameters.
func Params(cfg config.Server) websocket.HttpParams {
	return websocket.HttpParams{
		Address: cfg.Address,
		Prefix:  cfg.Prefix,
		Root:    cfg.Root,
	}
}

// InitServer builds the page server described by cfg.
func InitServer(cfg config.Server, onReport websocket.ReportFunc) (*websocket.Server, error) {
	return websocket.NewServer(Params(cfg), onReport)
}
