package whttp

import "github.com/sirupsen/logrus"

// LogrusAdapter lets retryablehttp log through a logrus logger at debug level,
// so request chatter only shows up with --loglevel debug.
type LogrusAdapter struct {
	Log *logrus.Logger
}

func (a LogrusAdapter) fields(keysAndValues []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if k, ok := keysAndValues[i].(string); ok {
			f[k] = keysAndValues[i+1]
		}
	}
	return f
}

func (a LogrusAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.Log.WithFields(a.fields(keysAndValues)).Warn(msg)
}

func (a LogrusAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.Log.WithFields(a.fields(keysAndValues)).Debug(msg)
}

func (a LogrusAdapter) Debug(msg string, keysAndValues ...interface{}) {
	a.Log.WithFields(a.fields(keysAndValues)).Debug(msg)
}

func (a LogrusAdapter) Warn(msg string, keysAndValues ...interface{}) {
	a.Log.WithFields(a.fields(keysAndValues)).Warn(msg)
}
