package logging

import (
	"os"

	"go.uber.org/zap"
)

// New builds the process logger: JSON in release mode, console otherwise.
func New() (*zap.Logger, error) {
	if os.Getenv("GIN_MODE") == "release" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
