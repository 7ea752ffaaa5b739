package main

import (
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// guardTick runs fn and stops a panic raised inside it from leaving the
// tick. The panic is logged and, when a sentry client is configured,
// reported. It returns true when fn panicked.
func guardTick(log logrus.FieldLogger, scene string, fn func()) (panicked bool) {
	defer func() {
		err := recover()
		if err == nil {
			return
		}
		panicked = true
		log.WithField("panic", err).
			WithField("scene", scene).
			WithField("stack", string(debug.Stack())).
			Error("tick panicked, frame skipped")

		if sentry.CurrentHub().Client() == nil {
			return
		}
		hub := sentry.CurrentHub().Clone()
		hub.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetTag("scene", scene)
		})
		hub.Recover(err)
		hub.Flush(time.Second * 5)
	}()

	fn()
	return false
}
