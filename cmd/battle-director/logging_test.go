package main

import (
	"io"
	"log"
	"os"
	"testing"
)

func TestSetupLoggingDisabledByDefault(t *testing.T) {
	logFile := setupLogging(false)
	if logFile != nil {
		t.Error("expected nil log file when debug=false")
		logFile.Close()
	}
	if log.Writer() != io.Discard {
		t.Errorf("expected log output to be io.Discard, got %v", log.Writer())
	}
}

func TestSetupLoggingEnabledWithDebug(t *testing.T) {
	defer os.RemoveAll("logs")

	logFile := setupLogging(true)
	if logFile == nil {
		t.Fatal("expected non-nil log file when debug=true")
	}
	defer logFile.Close()

	if _, err := os.Stat("logs"); os.IsNotExist(err) {
		t.Error("expected logs directory to be created")
	}

	log.Println("test log message")

	info, err := logFile.Stat()
	if err != nil {
		t.Fatalf("failed to stat log file: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected log file to contain content")
	}
}

func TestSetupLoggingNoStdoutStderr(t *testing.T) {
	defer os.RemoveAll("logs")

	logFile := setupLogging(true)
	if logFile == nil {
		t.Fatal("expected non-nil log file")
	}
	defer logFile.Close()

	if log.Writer() == os.Stdout {
		t.Error("log output should not be stdout")
	}
	if log.Writer() == os.Stderr {
		t.Error("log output should not be stderr")
	}
}
