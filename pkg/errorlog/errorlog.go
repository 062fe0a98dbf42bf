// Package errorlog appends operator-facing error records to a rotated JSON
// log file, one object per line.
package errorlog

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blobr/blobr/pkg/celenium"
	"github.com/blobr/blobr/pkg/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var ErrInvalidPath = errors.New("invalid error log path: must not be empty")

// DefaultPath returns the per-run file name used when none is configured.
func DefaultPath(now time.Time) string {
	return fmt.Sprintf("blobr-errors-%d.log", now.Unix())
}

// Writer persists error records. It is safe for concurrent use.
type Writer struct {
	path   string
	file   *lumberjack.Logger
	logger *zap.Logger

	mu     sync.Mutex
	count  int
	closed bool
}

func New(path string) (*Writer, error) {
	if path == "" {
		return nil, ErrInvalidPath
	}
	file, err := utils.NewRotatingFile(path)
	if err != nil {
		return nil, err
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		MessageKey:     "context",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(file), zapcore.DebugLevel)

	return &Writer{
		path:   path,
		file:   file,
		logger: zap.New(core),
	}, nil
}

// Path returns the file records are written to.
func (w *Writer) Path() string { return w.path }

// Count returns the number of records written so far.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Record appends one record for err under the given context. Upstream
// failures additionally carry the HTTP status and a response snippet.
func (w *Writer) Record(context string, err error) {
	fields := []zap.Field{
		zap.String("message", errMessage(err)),
		zap.String("kind", celenium.Kind(err)),
	}
	if status := celenium.StatusCode(err); status != 0 {
		fields = append(fields, zap.Int("status", status))
	}
	if body := celenium.ResponseBody(err); body != "" {
		fields = append(fields, zap.String("response", body))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.logger.Info(context, fields...)
	w.count++
}

// Close flushes and closes the file. Records after Close are dropped.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	_ = w.logger.Sync()
	return w.file.Close()
}

func errMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
