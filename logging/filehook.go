package logging

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// LogrusFileHook appends every entry as a JSON line to a file
type LogrusFileHook struct {
	mu        sync.Mutex
	file      *os.File
	formatter *logrus.JSONFormatter
}

func NewLogrusFileHook(file string, flag int, chmod os.FileMode) (*LogrusFileHook, error) {
	logFile, err := os.OpenFile(file, flag, chmod)
	if err != nil {
		return nil, errors.Wrapf(err, "opening log file %s", file)
	}

	return &LogrusFileHook{file: logFile, formatter: &logrus.JSONFormatter{}}, nil
}

// Fire event
func (hook *LogrusFileHook) Fire(entry *logrus.Entry) error {
	line, err := hook.formatter.Format(entry)
	if err != nil {
		return errors.Wrap(err, "formatting log entry")
	}

	hook.mu.Lock()
	defer hook.mu.Unlock()
	_, err = hook.file.Write(line)
	return errors.Wrap(err, "writing log entry")
}

func (hook *LogrusFileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook *LogrusFileHook) Close() error {
	return hook.file.Close()
}
