package notifications

import (
	"reportnotifier/internal/types"
)

// recordingLogger captures log messages for assertions. With returns the
// same logger so contextual messages are captured too.
type recordingLogger struct {
	infos  []string
	warns  []string
	errors []string
}

func (l *recordingLogger) Info(msg string, _ ...any)  { l.infos = append(l.infos, msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.warns = append(l.warns, msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.errors = append(l.errors, msg) }
func (l *recordingLogger) With(_ ...any) types.Logger { return l }

func newTestLogger() *recordingLogger {
	return &recordingLogger{}
}

// testProcess returns a process definition with the given addendum (nil for
// none).
func testProcess(addendum *string) *types.Process {
	return &types.Process{
		ID:            7,
		Name:          "overdue",
		EmailSubject:  "Overdue Items Report",
		EmailBody:     "The following items are overdue.",
		EmailAddendum: addendum,
		Container:     "reports",
	}
}
