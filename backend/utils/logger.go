package utils

import (
	"log"
	"os"
)

// InitLogger returns the application logger used by the request
// logging middleware and startup code.
func InitLogger() *log.Logger {
	return log.New(os.Stdout, "[FinQuest] ", log.LstdFlags|log.LUTC)
}
