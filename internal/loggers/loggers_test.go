package loggers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/meshplus/govhub/internal/repo"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	cfg, err := repo.DefaultConfig()
	require.Nil(t, err)
	cfg.RepoRoot = t.TempDir()
	cfg.Log.Level = "warn"
	cfg.Log.Module.Governance = "debug"
	cfg.Log.Module.Power = ""
	cfg.Log.Persist = true

	require.Nil(t, Initialize(cfg))

	gov := Logger(Governance).(*logrus.Entry)
	assert.Equal(t, logrus.DebugLevel, gov.Logger.GetLevel())
	assert.Equal(t, Governance, gov.Data["module"])

	pow := Logger(Power).(*logrus.Entry)
	assert.Equal(t, logrus.WarnLevel, pow.Logger.GetLevel())

	gov.Info("persisted")
	_, err = os.Lstat(filepath.Join(cfg.RepoRoot, cfg.Log.Dir, cfg.Log.Filename))
	assert.Nil(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.ErrorLevel, parseLevel("error"))
	assert.Equal(t, logrus.InfoLevel, parseLevel("nonsense"))
}
