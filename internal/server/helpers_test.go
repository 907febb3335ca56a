package server

import (
	"io"

	"github.com/dmitrijs2005/certhub/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogJSONLogger(io.Discard, "debug")
}
