package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// setupLogging routes the standard logger to a timestamped file under
// logs/ when debug is enabled and silences it otherwise
// Returns the open log file, nil when output is discarded
func setupLogging(debug bool) *os.File {
	if !debug {
		log.SetOutput(io.Discard)
		return nil
	}

	if err := os.MkdirAll("logs", 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "cannot create logs directory: %v\n", err)
		log.SetOutput(io.Discard)
		return nil
	}

	name := filepath.Join("logs", time.Now().Format("battle-2006-01-02-150405.log"))
	f, err := os.Create(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot create log file: %v\n", err)
		log.SetOutput(io.Discard)
		return nil
	}

	log.SetOutput(f)
	log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	return f
}
