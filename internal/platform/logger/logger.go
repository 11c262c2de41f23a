package logger

import (
	"log"
	"os"
)

// New returns the plain stdout logger shared by main, the event worker, and
// the reconciliation watcher.
func New() *log.Logger {
	return log.New(os.Stdout, "", log.LstdFlags)
}
