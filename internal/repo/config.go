package repo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/meshplus/govhub/internal/governance"
	"github.com/meshplus/govhub/internal/governance/proposal"
	"github.com/meshplus/govhub/internal/governance/voting"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	// defaultPathName is the default config dir name
	defaultPathName = ".govhub"
	// defaultPathRoot is the path to the default config dir location.
	defaultPathRoot = "~/" + defaultPathName
	// envDir is the environment variable used to change the path root.
	envDir = "GOVHUB_PATH"
	// Config name
	configName = "govhub.toml"
	envPrefix  = "GOVHUB"

	StorageLevelDB = "leveldb"
	StorageMemory  = "memory"

	PowerSourceGroup   = "group"
	PowerSourceStaking = "staking"
)

// Config is the govhub node config.
type Config struct {
	RepoRoot   string     `json:"repo_root" toml:"-"`
	Title      string     `json:"title" toml:"title"`
	Log        Log        `json:"log" toml:"log"`
	Storage    Storage    `json:"storage" toml:"storage"`
	Governance Governance `json:"governance" toml:"governance"`
	Power      Power      `json:"power" toml:"power"`
}

type Log struct {
	Level        string    `json:"level" toml:"level"`
	Dir          string    `json:"dir" toml:"dir"`
	Filename     string    `json:"filename" toml:"filename"`
	ReportCaller bool      `mapstructure:"report_caller" json:"report_caller" toml:"report_caller"`
	Persist      bool      `json:"persist" toml:"persist"`
	Module       LogModule `json:"module" toml:"module"`
}

type LogModule struct {
	App        string `json:"app" toml:"app"`
	Governance string `json:"governance" toml:"governance"`
	Power      string `json:"power" toml:"power"`
	Storage    string `json:"storage" toml:"storage"`
}

type Storage struct {
	Type string `json:"type" toml:"type"`
	Dir  string `json:"dir" toml:"dir"`
}

// Governance is the human readable form of governance.Config. Durations are
// either a block count ("100" or "100blocks") or a Go duration ("72h").
type Governance struct {
	DAO                             string  `mapstructure:"dao" json:"dao" toml:"dao"`
	Quorum                          string  `json:"quorum" toml:"quorum"`
	MinVotingPeriod                 string  `mapstructure:"min_voting_period" json:"min_voting_period" toml:"min_voting_period"`
	MaxVotingPeriod                 string  `mapstructure:"max_voting_period" json:"max_voting_period" toml:"max_voting_period"`
	AllowRevoting                   bool    `mapstructure:"allow_revoting" json:"allow_revoting" toml:"allow_revoting"`
	OnlyMembersExecute              bool    `mapstructure:"only_members_execute" json:"only_members_execute" toml:"only_members_execute"`
	CloseProposalOnExecutionFailure bool    `mapstructure:"close_proposal_on_execution_failure" json:"close_proposal_on_execution_failure" toml:"close_proposal_on_execution_failure"`
	CreationPolicy                  string  `mapstructure:"creation_policy" json:"creation_policy" toml:"creation_policy"`
	ProposalCacheSize               int     `mapstructure:"proposal_cache_size" json:"proposal_cache_size" toml:"proposal_cache_size"`
	Veto                            Veto    `json:"veto" toml:"veto"`
	Deposit                         Deposit `json:"deposit" toml:"deposit"`
}

type Veto struct {
	Enable           bool   `json:"enable" toml:"enable"`
	Vetoer           string `json:"vetoer" toml:"vetoer"`
	Timelock         string `json:"timelock" toml:"timelock"`
	EarlyExecute     bool   `mapstructure:"early_execute" json:"early_execute" toml:"early_execute"`
	VetoBeforePassed bool   `mapstructure:"veto_before_passed" json:"veto_before_passed" toml:"veto_before_passed"`
}

type Deposit struct {
	Enable       bool   `json:"enable" toml:"enable"`
	Denom        string `json:"denom" toml:"denom"`
	Amount       string `json:"amount" toml:"amount"`
	RefundPolicy string `mapstructure:"refund_policy" json:"refund_policy" toml:"refund_policy"`
}

type Power struct {
	Source          string    `json:"source" toml:"source"`
	ActiveThreshold string    `mapstructure:"active_threshold" json:"active_threshold" toml:"active_threshold"`
	Members         []*Member `json:"members" toml:"members"`
}

type Member struct {
	Address string `json:"address" toml:"address"`
	Weight  uint64 `json:"weight" toml:"weight"`
}

func (c *Config) Bytes() ([]byte, error) {
	ret, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}

	return ret, nil
}

func DefaultConfig() (*Config, error) {
	return &Config{
		Title: "GovHub configuration file",
		Log: Log{
			Level:    "info",
			Dir:      "logs",
			Filename: "govhub.log",
			Module: LogModule{
				App:        "info",
				Governance: "info",
				Power:      "info",
				Storage:    "info",
			},
		},
		Storage: Storage{
			Type: StorageLevelDB,
		},
		Governance: Governance{
			DAO:               "dao",
			Quorum:            "majority",
			MaxVotingPeriod:   "100blocks",
			CreationPolicy:    governance.DefaultCreationPolicy,
			ProposalCacheSize: 1024,
			Deposit: Deposit{
				RefundPolicy: string(proposal.RefundOnlyPassed),
			},
		},
		Power: Power{
			Source:          PowerSourceGroup,
			ActiveThreshold: "0",
		},
	}, nil
}

func UnmarshalConfig(v *viper.Viper, repoRoot string, configPath string) (*Config, error) {
	if len(configPath) == 0 {
		v.SetConfigFile(filepath.Join(repoRoot, configName))
	} else {
		v.SetConfigFile(configPath)
		fileData, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configPath, err)
		}
		if err := os.WriteFile(filepath.Join(repoRoot, configName), fileData, 0644); err != nil {
			return nil, fmt.Errorf("copy config file to %s: %w", repoRoot, err)
		}
	}
	v.SetConfigType("toml")
	v.AutomaticEnv()
	v.SetEnvPrefix(envPrefix)
	replacer := strings.NewReplacer(".", "_")
	v.SetEnvKeyReplacer(replacer)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	config, err := DefaultConfig()
	if err != nil {
		return nil, err
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, err
	}

	config.RepoRoot = repoRoot

	return config, nil
}

// GovernanceConfig converts the [governance] section to the module config.
func (c *Config) GovernanceConfig() (*governance.Config, error) {
	gc := c.Governance
	quorum, err := voting.ParseQuorum(gc.Quorum)
	if err != nil {
		return nil, fmt.Errorf("governance.quorum: %w", err)
	}
	maxPeriod, err := voting.ParseDuration(gc.MaxVotingPeriod)
	if err != nil {
		return nil, fmt.Errorf("governance.max_voting_period: %w", err)
	}

	cfg := &governance.Config{
		DAO:                             gc.DAO,
		VotingStrategy:                  voting.SingleChoice(quorum),
		MaxVotingPeriod:                 maxPeriod,
		AllowRevoting:                   gc.AllowRevoting,
		OnlyMembersExecute:              gc.OnlyMembersExecute,
		CloseProposalOnExecutionFailure: gc.CloseProposalOnExecutionFailure,
		CreationPolicy:                  gc.CreationPolicy,
	}
	if cfg.CreationPolicy == "" {
		cfg.CreationPolicy = governance.DefaultCreationPolicy
	}

	if gc.MinVotingPeriod != "" {
		minPeriod, err := voting.ParseDuration(gc.MinVotingPeriod)
		if err != nil {
			return nil, fmt.Errorf("governance.min_voting_period: %w", err)
		}
		cfg.MinVotingPeriod = &minPeriod
	}

	if gc.Veto.Enable {
		timelock, err := voting.ParseDuration(gc.Veto.Timelock)
		if err != nil {
			return nil, fmt.Errorf("governance.veto.timelock: %w", err)
		}
		cfg.Veto = &proposal.VetoConfig{
			Vetoer:           gc.Veto.Vetoer,
			TimelockDuration: timelock,
			EarlyExecute:     gc.Veto.EarlyExecute,
			VetoBeforePassed: gc.Veto.VetoBeforePassed,
		}
	}

	if gc.Deposit.Enable {
		amount, err := voting.ParseAmount(gc.Deposit.Amount)
		if err != nil {
			return nil, fmt.Errorf("governance.deposit.amount: %w", err)
		}
		policy := proposal.RefundPolicy(gc.Deposit.RefundPolicy)
		if policy == "" {
			policy = proposal.RefundOnlyPassed
		}
		cfg.Deposit = &governance.DepositConfig{
			Denom:        gc.Deposit.Denom,
			Amount:       amount,
			RefundPolicy: policy,
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ActiveThreshold parses power.active_threshold, defaulting to zero.
func (c *Config) ActiveThreshold() (voting.Amount, error) {
	if c.Power.ActiveThreshold == "" {
		return voting.ZeroAmount(), nil
	}
	return voting.ParseAmount(c.Power.ActiveThreshold)
}

func PathRoot() (string, error) {
	dir := os.Getenv(envDir)
	var err error
	if len(dir) == 0 {
		dir, err = homedir.Expand(defaultPathRoot)
	}
	return dir, err
}

func PathRootWithDefault(path string) (string, error) {
	if len(path) == 0 {
		return PathRoot()
	}

	return path, nil
}
