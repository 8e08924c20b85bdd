package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// InitLogger configures the standard logrus logger. Production emits JSON,
// anything else emits human-readable text.
func InitLogger(level string, production bool) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetOutput(os.Stdout)

	if production {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.Warnf("Unknown log level %q, using info", level)
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	log.Info("Logger initialized")
	return log
}
