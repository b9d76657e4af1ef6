// Package logger configures the process-wide logrus logger.
package logger

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// Init sets level and formatter. format is "json" or "text"; unknown levels fall back to info.
func Init(level, format string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stdout)

	if format == "json" {
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
}
