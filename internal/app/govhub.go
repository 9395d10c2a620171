package app

import (
	"fmt"
	"sync"

	"github.com/meshplus/govhub/internal/governance"
	"github.com/meshplus/govhub/internal/governance/voting"
	"github.com/meshplus/govhub/internal/loggers"
	"github.com/meshplus/govhub/internal/power"
	"github.com/meshplus/govhub/internal/repo"
	"github.com/meshplus/govhub/pkg/storage"
	"github.com/meshplus/govhub/pkg/storage/leveldb"
	"github.com/sirupsen/logrus"
)

// GovHub is a governance node: one storage, one voting power source and
// the governance module running on top of them.
type GovHub struct {
	Governance *governance.Governance
	Group      *power.Group
	Staking    *power.Staking
	Executor   *Executor
	Treasury   *Treasury

	repo    *repo.Repo
	storage storage.Storage
	members *memberJournal
	logger  logrus.FieldLogger

	weightLock sync.Mutex
}

func NewGovHub(rep *repo.Repo) (*GovHub, error) {
	config := rep.Config
	logger := loggers.Logger(loggers.App)

	storageLogger := loggers.Logger(loggers.Storage)
	db, err := openStorage(config, storageLogger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	gh := &GovHub{
		repo:    rep,
		storage: db,
		members: &memberJournal{db: db, logger: storageLogger},
		logger:  logger,
	}
	if err := gh.init(); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"storage": config.Storage.Type,
		"power":   config.Power.Source,
		"dao":     config.Governance.DAO,
	}).Info("GovHub initialized")

	return gh, nil
}

func openStorage(config *repo.Config, logger logrus.FieldLogger) (storage.Storage, error) {
	switch config.Storage.Type {
	case repo.StorageMemory:
		logger.Warn("Storage is kept in memory and lost on exit")
		return leveldb.NewMemory()
	case repo.StorageLevelDB, "":
		dir := config.Storage.Dir
		if dir == "" {
			dir = repo.GetStoragePath(config.RepoRoot, "govhub")
		}
		db, err := leveldb.New(dir)
		if err != nil {
			return nil, err
		}
		logger.WithField("dir", dir).Info("Open leveldb storage")
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", config.Storage.Type)
	}
}

func (gh *GovHub) init() error {
	config := gh.repo.Config

	var (
		source   power.Source
		activity power.ActivityChecker
	)
	switch config.Power.Source {
	case repo.PowerSourceGroup, "":
		group, err := gh.loadGroup()
		if err != nil {
			return err
		}
		gh.Group = group
		source, activity = group, group
	case repo.PowerSourceStaking:
		threshold, err := config.ActiveThreshold()
		if err != nil {
			return fmt.Errorf("power.active_threshold: %w", err)
		}
		gh.Staking = power.NewStaking(gh.storage, threshold, loggers.Logger(loggers.Power))
		source, activity = gh.Staking, gh.Staking
	default:
		return fmt.Errorf("%w: %q", power.ErrUnknownSource, config.Power.Source)
	}

	govConfig, err := config.GovernanceConfig()
	if err != nil {
		return fmt.Errorf("governance config: %w", err)
	}

	gh.Executor = NewExecutor(gh.storage, gh.logger)
	gh.Treasury = NewTreasury(gh.storage, govConfig.DAO, gh.logger)

	gov, err := governance.New(gh.storage, source, govConfig, config.Governance.ProposalCacheSize,
		loggers.Logger(loggers.Governance),
		governance.WithActivityChecker(activity),
		governance.WithMessageExecutor(gh.Executor),
		governance.WithDepositHandler(gh.Treasury),
	)
	if err != nil {
		return fmt.Errorf("create governance: %w", err)
	}
	gh.Governance = gov

	return nil
}

// loadGroup applies the configured members at height 0 and then every
// recorded weight change in height order.
func (gh *GovHub) loadGroup() (*power.Group, error) {
	group := power.NewGroup(loggers.Logger(loggers.Power))
	for _, m := range gh.repo.Config.Power.Members {
		if err := group.SetWeight(m.Address, voting.NewAmount(m.Weight), 0); err != nil {
			return nil, fmt.Errorf("set weight of configured member %s: %w", m.Address, err)
		}
	}

	err := gh.members.replay(func(c *weightChange) error {
		return group.SetWeight(c.Address, c.Weight, c.Height)
	})
	if err != nil {
		return nil, fmt.Errorf("replay member weights: %w", err)
	}

	return group, nil
}

// SetWeight changes a group member's weight from height on. The change is
// recorded first so the group only changes once it survives restarts.
func (gh *GovHub) SetWeight(addr string, weight voting.Amount, height uint64) error {
	if gh.Group == nil {
		return fmt.Errorf("%w: voting power source is %q", power.ErrUnknownSource, gh.repo.Config.Power.Source)
	}

	gh.weightLock.Lock()
	defer gh.weightLock.Unlock()

	if err := gh.Group.CheckWeight(addr, weight, height); err != nil {
		return err
	}
	if err := gh.members.record(&weightChange{Address: addr, Weight: weight, Height: height}); err != nil {
		return fmt.Errorf("record weight change: %w", err)
	}
	return gh.Group.SetWeight(addr, weight, height)
}

// Source returns the voting power source in use.
func (gh *GovHub) Source() power.Source {
	if gh.Group != nil {
		return gh.Group
	}
	return gh.Staking
}

func (gh *GovHub) RepoConfig() *repo.Config {
	return gh.repo.Config
}

func (gh *GovHub) Stop() error {
	if err := gh.storage.Close(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	gh.logger.Info("GovHub stopped")
	return nil
}
