package deployer

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// transcript is the progress report handed back to the caller. Progress
// lines only appear when verbose; failures and warnings always do. Every
// line is also logged.
type transcript struct {
	w       io.Writer
	verbose bool
	log     *log.Entry
}

func (t *transcript) println(s string) {
	fmt.Fprintln(t.w, s)
}

// Printf writes a line unconditionally.
func (t *transcript) Printf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	t.log.Info(msg)
	t.println(msg)
}

// Infof reports progress.
func (t *transcript) Infof(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	t.log.Debug(msg)
	if t.verbose {
		t.println(" * " + msg)
	}
}

// Warnf reports a problem the sync continues past.
func (t *transcript) Warnf(err error, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	t.log.WithError(err).Warn(msg)
	t.println(" # " + msg)
}

// Fail reports err and returns it.
func (t *transcript) Fail(err *Error) *Error {
	t.log.WithError(err.Err).WithField("kind", err.Kind).Error(err.Msg)
	t.println(" # " + err.Msg)
	return err
}
