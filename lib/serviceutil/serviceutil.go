package serviceutil

import (
	"log/slog"
	"os"
)

// Fatal logs the error and exits with a failing status.
func Fatal(message string, err error) {
	if err == nil {
		slog.Error(message)
	} else {
		slog.Error(message, "err", err.Error())
	}
	os.Exit(1)
}
