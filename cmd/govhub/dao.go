package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/meshplus/govhub/internal/app"
	"github.com/urfave/cli"
)

func daoCMD() cli.Command {
	return cli.Command{
		Name:  "dao",
		Usage: "governance module config command",
		Subcommands: cli.Commands{
			cli.Command{
				Name:   "config",
				Usage:  "show the governance config in use",
				Action: showGovernanceConfig,
			},
			cli.Command{
				Name:   "update-config",
				Usage:  "replace the governance config in use with the [governance] section of the repo config",
				Flags:  append([]cli.Flag{fromFlag}, blockFlags...),
				Action: updateGovernanceConfig,
			},
		},
	}
}

func showGovernanceConfig(ctx *cli.Context) error {
	return withGovHub(ctx, func(gh *app.GovHub) error {
		cfg, err := gh.Governance.Config()
		if err != nil {
			return err
		}
		s, err := prettyjson.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config error: %w", err)
		}
		fmt.Println(string(s))
		return nil
	})
}

func updateGovernanceConfig(ctx *cli.Context) error {
	block, err := parseBlock(ctx)
	if err != nil {
		return err
	}

	return withGovHub(ctx, func(gh *app.GovHub) error {
		cfg, err := gh.RepoConfig().GovernanceConfig()
		if err != nil {
			return err
		}
		if err := gh.Governance.UpdateConfig(block, ctx.String("from"), cfg); err != nil {
			color.Red("update config error: %s\n", err)
			return err
		}
		color.Green("update config successfully\n")
		return nil
	})
}
