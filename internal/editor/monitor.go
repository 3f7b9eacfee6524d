package editor

import (
	"errors"

	"go.uber.org/zap"

	"github.com/gnolang/weave/internal/scope"
)

// Monitor collects the errors reported while a script is applied and logs
// them with their context.
type Monitor struct {
	logger *zap.Logger
	errs   []error
}

func NewMonitor(logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{logger: logger}
}

// Report records err. Count violations add the expected and actual counts to
// the log entry.
func (m *Monitor) Report(err error, fields ...zap.Field) {
	m.errs = append(m.errs, err)
	var cerr *scope.CountError
	if errors.As(err, &cerr) {
		fields = append(fields, zap.Int("expected", cerr.Expected), zap.Int("actual", cerr.Actual))
	}
	m.logger.Error("Error applying statement", append(fields, zap.Error(err))...)
}

func (m *Monitor) Errors() []error { return m.errs }
func (m *Monitor) Failed() bool    { return len(m.errs) > 0 }

// Err joins every reported error.
func (m *Monitor) Err() error { return errors.Join(m.errs...) }
