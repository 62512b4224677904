package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

var (
	InfoLogger  = newLogger(os.Stdout, logrus.InfoLevel)
	ErrorLogger = newLogger(os.Stderr, logrus.WarnLevel)
)

func newLogger(out *os.File, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	l.SetLevel(level)
	return l
}

// InitLogger applies LOG_LEVEL to the info logger. The error logger keeps
// warn and above so security events are never filtered out.
func InitLogger(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		ErrorLogger.Warnf("unknown log level %q, falling back to info", level)
	}
	InfoLogger.SetLevel(lvl)
	if lvl >= logrus.WarnLevel {
		ErrorLogger.SetLevel(logrus.WarnLevel)
	} else {
		ErrorLogger.SetLevel(lvl)
	}
}
