package storage

import (
	"strings"

	"gorm.io/gorm/logger"
)

// ParseLogLevel converts DB_LOG_LEVEL to a gorm log level.
func ParseLogLevel(levelStr string) logger.LogLevel {
	switch strings.ToLower(levelStr) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
