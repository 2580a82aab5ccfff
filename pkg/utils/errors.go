package utils

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// LogErrorf logs the formatted error before returning it, for handlers whose
// errors may never reach the client.
func LogErrorf(format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	log.Error(err)
	return err
}
