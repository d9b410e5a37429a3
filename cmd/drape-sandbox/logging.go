package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

const (
	defaultLogDir = "logs"
	logFileName   = "drape.log"
	maxLogSize    = 10 * 1024 * 1024
)

// setupLogging routes the standard logger to <dir>/drape.log in debug mode
// and discards it otherwise, the terminal belongs to the renderer
// An empty dir falls back to logs/
// An oversized previous log is rotated aside with a timestamp suffix
func setupLogging(debug bool, logDir string) *os.File {
	if !debug {
		log.SetOutput(io.Discard)
		return nil
	}
	if logDir == "" {
		logDir = defaultLogDir
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.SetOutput(io.Discard)
		return nil
	}

	logPath := filepath.Join(logDir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(logDir, fmt.Sprintf("drape-%s.log", time.Now().Format("20060102-150405")))
		if err := os.Rename(logPath, rotated); err != nil {
			log.SetOutput(io.Discard)
			return nil
		}
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return nil
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	return f
}
