// Package slogx holds the shared slog attribute helpers.
package slogx

import (
	"log/slog"
)

// Error wraps err under the conventional "error" key.
func Error(err error) slog.Attr {
	return slog.String("error", err.Error())
}
