package errprocess

import (
	"errors"

	"videoboard/pkg/logger"
)

// Set log the message and hand back the matching error
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}
