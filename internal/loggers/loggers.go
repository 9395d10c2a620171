package loggers

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/meshplus/govhub/internal/repo"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

const (
	App        = "app"
	Governance = "governance"
	Power      = "power"
	Storage    = "storage"

	rotationTime = 24 * time.Hour
	maxAge       = 7 * 24 * time.Hour
)

var w = &loggerWrapper{
	loggers: map[string]*logrus.Entry{
		App:        newWithModule(App),
		Governance: newWithModule(Governance),
		Power:      newWithModule(Power),
		Storage:    newWithModule(Storage),
	},
}

type loggerWrapper struct {
	loggers map[string]*logrus.Entry
}

func newWithModule(name string) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000",
	})
	return logger.WithField("module", name)
}

func parseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Initialize rebuilds the module loggers from config. Modules without their
// own level fall back to log.level.
func Initialize(config *repo.Config) error {
	levels := map[string]string{
		App:        config.Log.Module.App,
		Governance: config.Log.Module.Governance,
		Power:      config.Log.Module.Power,
		Storage:    config.Log.Module.Storage,
	}

	var hook logrus.Hook
	if config.Log.Persist {
		var err error
		hook, err = newFileHook(repo.GetLogPath(config.RepoRoot, config), config.Log.Filename)
		if err != nil {
			return err
		}
	}

	m := make(map[string]*logrus.Entry, len(levels))
	for name, level := range levels {
		if level == "" {
			level = config.Log.Level
		}
		entry := newWithModule(name)
		entry.Logger.SetLevel(parseLevel(level))
		entry.Logger.SetReportCaller(config.Log.ReportCaller)
		if hook != nil {
			entry.Logger.AddHook(hook)
		}
		m[name] = entry
	}

	w = &loggerWrapper{loggers: m}
	return nil
}

func newFileHook(dir, filename string) (logrus.Hook, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, filename)
	writer, err := rotatelogs.New(
		path+".%Y%m%d",
		rotatelogs.WithLinkName(path),
		rotatelogs.WithRotationTime(rotationTime),
		rotatelogs.WithMaxAge(maxAge),
	)
	if err != nil {
		return nil, fmt.Errorf("create rotate logs: %w", err)
	}

	return lfshook.NewHook(lfshook.WriterMap{
		logrus.TraceLevel: writer,
		logrus.DebugLevel: writer,
		logrus.InfoLevel:  writer,
		logrus.WarnLevel:  writer,
		logrus.ErrorLevel: writer,
		logrus.FatalLevel: writer,
		logrus.PanicLevel: writer,
	}, &logrus.JSONFormatter{}), nil
}

func Logger(name string) logrus.FieldLogger {
	return w.loggers[name]
}
