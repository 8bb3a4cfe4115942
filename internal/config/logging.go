package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the application logger. Output goes to a rotating file
// and, when extra is not nil, to extra as well (the UI log pane).
// The returned closer flushes and closes the log file.
func NewLogger(cfg LogConfig, extra io.Writer) (*log.Logger, io.Closer, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, err
	}

	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}

	var w io.Writer = file
	if extra != nil {
		w = io.MultiWriter(file, extra)
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})
	return logger, file, nil
}

// LineWriter splits written bytes into lines and offers each one on a
// channel. Lines are dropped when the reader falls behind so logging
// never blocks on the UI.
type LineWriter struct {
	mu    sync.Mutex
	buf   []byte
	lines chan string
}

func NewLineWriter(capacity int) *LineWriter {
	return &LineWriter{lines: make(chan string, capacity)}
}

// Lines is the channel complete lines are delivered on, newline included
func (w *LineWriter) Lines() <-chan string {
	return w.lines
}

func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		line := string(w.buf[:i+1])
		w.buf = w.buf[i+1:]
		select {
		case w.lines <- line:
		default:
		}
	}
	return len(p), nil
}
