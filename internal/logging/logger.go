package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/benbjohnson/clock"

	"traffic-monitor/internal/traffic"
)

const (
	FilePrefix = "traffic-"
	FileSuffix = ".ndjson"
	dateLayout = "2006-01-02"
)

// Logger appends one JSON object per event to a file named after the current
// UTC day.
type Logger struct {
	logDir string
	clock  clock.Clock
	mu     sync.Mutex
	file   *os.File
	date   string
}

type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Type      string         `json:"type"`
	Metric    string         `json:"metric"`
	Reasons   []string       `json:"reasons,omitempty"`
	Record    traffic.Record `json:"record"`
}

func NewLogger(logDir string, clk clock.Clock) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log dir: %w", err)
	}
	if clk == nil {
		clk = clock.New()
	}

	logger := &Logger{logDir: logDir, clock: clk}
	if err := logger.rotateIfNeeded(); err != nil {
		return nil, err
	}

	return logger, nil
}

func FileName(date string) string {
	return FilePrefix + date + FileSuffix
}

func (l *Logger) LogSample(frame traffic.Frame) error {
	return l.log("sample", "traffic", nil, frame)
}

func (l *Logger) LogSpike(frame traffic.Frame, directions []string) error {
	return l.log("spike", metricName(directions), directions, frame)
}

func (l *Logger) LogAlert(frame traffic.Frame, directions []string) error {
	return l.log("alert", metricName(directions), directions, frame)
}

func metricName(directions []string) string {
	if len(directions) == 1 {
		return directions[0]
	}
	return "multi"
}

func (l *Logger) log(eventType, metric string, reasons []string, frame traffic.Frame) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.rotateIfNeeded(); err != nil {
		return err
	}

	rec := frame.Record()
	entry := LogEntry{
		Timestamp: rec.Timestamp,
		Type:      eventType,
		Metric:    metric,
		Reasons:   reasons,
		Record:    rec,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	if _, err := l.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}

	return nil
}

func (l *Logger) rotateIfNeeded() error {
	currentDate := l.clock.Now().UTC().Format(dateLayout)

	if l.file != nil && l.date == currentDate {
		return nil
	}

	if l.file != nil {
		l.file.Close()
	}

	filename := filepath.Join(l.logDir, FileName(currentDate))
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.file = file
	l.date = currentDate
	return nil
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}
