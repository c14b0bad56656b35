package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

func formatter() *logrus.JSONFormatter {
	return &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "@timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	}
}

// New builds the service logger and configures the standard logrus logger
// the same way, so package-level logrus calls share the format.
func New(level string, out io.Writer) *logrus.Logger {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}

	logrus.SetFormatter(formatter())
	logrus.SetLevel(lvl)

	l := logrus.New()
	l.SetFormatter(formatter())
	l.SetLevel(lvl)
	if out != nil {
		logrus.SetOutput(out)
		l.SetOutput(out)
	}
	if err != nil && level != "" {
		l.WithField("level", level).Warn("unknown log level, using info")
	}
	return l
}
