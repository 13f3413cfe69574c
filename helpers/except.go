// Except.go: Contains functions to make handling panics less PITA

package helpers

import (
	"fmt"
	"runtime"

	"github.com/Seklfreak/Guildkeeper/cache"
	"github.com/getsentry/raven-go"
	"github.com/pkg/errors"
)

// DEBUG_MODE adds stack traces to recovered panic logs
var DEBUG_MODE = false

// Recover recover()s, logs the panic and reports it to sentry
func Recover() {
	if r := recover(); r != nil {
		reportPanic(r, map[string]string{})
	}
}

// RecoverError recover()s into *errp so the surrounding function returns an
// error instead of crashing. Must be deferred directly.
func RecoverError(errp *error, tags map[string]string) {
	if r := recover(); r != nil {
		*errp = reportPanic(r, tags)
	}
}

// CaptureError sends err to sentry. No-op for nil errors or without a DSN.
func CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	if tags == nil {
		tags = map[string]string{}
	}
	raven.CaptureError(err, tags)
}

func reportPanic(r interface{}, tags map[string]string) error {
	err, ok := r.(error)
	if !ok {
		err = fmt.Errorf("%v", r)
	}
	err = errors.Wrap(err, "recovered panic")

	entry := cache.GetLogger().WithField("module", "helpers")
	for key, value := range tags {
		entry = entry.WithField(key, value)
	}
	if DEBUG_MODE {
		buf := make([]byte, 1<<16)
		stackSize := runtime.Stack(buf, false)
		entry = entry.WithField("stack", string(buf[0:stackSize]))
	}
	entry.Error(err.Error())

	CaptureError(err, tags)
	return err
}
