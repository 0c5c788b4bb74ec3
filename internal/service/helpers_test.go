package service_test

import (
	"io"
	"log/slog"
	"time"

	"fieldextract/mocks"
)

var epoch = time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClock() *mocks.FakeClock {
	return mocks.NewFakeClock(epoch)
}
