package main

import (
	"github.com/pitchside/matchday/internal/app/server"
	"github.com/pitchside/matchday/pkg/logging"
	"go.uber.org/zap"
)

func main() {
	logging.Fatal("Report server exited: ", zap.Error(
		server.NewServer().Start(),
	))
}
