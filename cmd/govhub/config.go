package main

import (
	"fmt"

	"github.com/hokaccha/go-prettyjson"
	"github.com/meshplus/govhub/internal/repo"
	"github.com/spf13/viper"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli"
)

func configCMD() cli.Command {
	return cli.Command{
		Name:      "config",
		Usage:     "Show GovHub config",
		ArgsUsage: "[path, e.g. governance.quorum]",
		Action:    showConfig,
	}
}

func showConfig(ctx *cli.Context) error {
	repoRoot, err := repo.PathRootWithDefault(ctx.GlobalString("repo"))
	if err != nil {
		return fmt.Errorf("pathRoot error: %w", err)
	}

	cfg, err := repo.UnmarshalConfig(viper.New(), repoRoot, ctx.GlobalString("config"))
	if err != nil {
		return fmt.Errorf("unmarshal config error: %w", err)
	}

	if ctx.NArg() == 0 {
		s, err := prettyjson.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config error: %w", err)
		}

		fmt.Println(string(s))

		return nil
	}

	data, err := cfg.Bytes()
	if err != nil {
		return fmt.Errorf("convert config to bytes failed: %w", err)
	}

	v := gjson.GetBytes(data, ctx.Args().First())
	if !v.Exists() {
		return fmt.Errorf("config %s not found", ctx.Args().First())
	}

	s, err := prettyjson.Format([]byte(v.Raw))
	if err != nil {
		return fmt.Errorf("format config error: %w", err)
	}

	fmt.Println(string(s))

	return nil
}
