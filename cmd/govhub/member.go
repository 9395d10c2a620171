package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/meshplus/govhub/internal/app"
	"github.com/meshplus/govhub/internal/governance/voting"
	"github.com/meshplus/govhub/internal/power"
	"github.com/spf13/cast"
	"github.com/urfave/cli"
)

var (
	denomFlag = cli.StringFlag{
		Name:     "denom",
		Usage:    "deposit denom",
		Required: true,
	}
	addrFlag = cli.StringFlag{
		Name:     "addr",
		Usage:    "member address",
		Required: true,
	}
	amountFlag = cli.StringFlag{
		Name:     "amount",
		Usage:    "amount of voting power",
		Required: true,
	}
	heightFlag = cli.StringFlag{
		Name:     "height",
		Usage:    "block height the change takes effect after",
		Required: true,
	}
)

func memberCMD() cli.Command {
	return cli.Command{
		Name:  "member",
		Usage: "voting power command",
		Subcommands: cli.Commands{
			cli.Command{
				Name:   "set-weight",
				Usage:  "set the weight of a group member, zero removes it",
				Flags:  []cli.Flag{addrFlag, amountFlag, heightFlag},
				Action: setWeight,
			},
			cli.Command{
				Name:   "stake",
				Usage:  "stake tokens for voting power",
				Flags:  []cli.Flag{addrFlag, amountFlag, heightFlag},
				Action: stake,
			},
			cli.Command{
				Name:   "unstake",
				Usage:  "unstake tokens",
				Flags:  []cli.Flag{addrFlag, amountFlag, heightFlag},
				Action: unstake,
			},
			cli.Command{
				Name:   "power",
				Usage:  "show the voting power of a member at a height",
				Flags:  []cli.Flag{addrFlag, heightFlag},
				Action: showPower,
			},
			cli.Command{
				Name:   "fund",
				Usage:  "credit deposit tokens to an address",
				Flags:  []cli.Flag{addrFlag, amountFlag, denomFlag},
				Action: fund,
			},
			cli.Command{
				Name:   "balance",
				Usage:  "show deposit tokens held by an address",
				Flags:  []cli.Flag{addrFlag, denomFlag},
				Action: showBalance,
			},
		},
	}
}

func parseChange(ctx *cli.Context) (voting.Amount, uint64, error) {
	amount, err := voting.ParseAmount(ctx.String("amount"))
	if err != nil {
		return voting.Amount{}, 0, fmt.Errorf("parse amount error: %w", err)
	}
	height, err := cast.ToUint64E(ctx.String("height"))
	if err != nil {
		return voting.Amount{}, 0, fmt.Errorf("parse height error: %w", err)
	}
	return amount, height, nil
}

func setWeight(ctx *cli.Context) error {
	weight, height, err := parseChange(ctx)
	if err != nil {
		return err
	}

	return withGovHub(ctx, func(gh *app.GovHub) error {
		if err := gh.SetWeight(ctx.String("addr"), weight, height); err != nil {
			color.Red("set weight error: %s\n", err)
			return err
		}
		color.Green("weight of %s is %s after height %d\n", ctx.String("addr"), weight, height)
		return nil
	})
}

func staking(gh *app.GovHub) (*power.Staking, error) {
	if gh.Staking == nil {
		return nil, fmt.Errorf("%w: voting power does not come from staking", power.ErrUnknownSource)
	}
	return gh.Staking, nil
}

func stake(ctx *cli.Context) error {
	amount, height, err := parseChange(ctx)
	if err != nil {
		return err
	}

	return withGovHub(ctx, func(gh *app.GovHub) error {
		s, err := staking(gh)
		if err != nil {
			return err
		}
		if err := s.Stake(ctx.String("addr"), amount, height); err != nil {
			color.Red("stake error: %s\n", err)
			return err
		}
		color.Green("stake successfully\n")
		return nil
	})
}

func unstake(ctx *cli.Context) error {
	amount, height, err := parseChange(ctx)
	if err != nil {
		return err
	}

	return withGovHub(ctx, func(gh *app.GovHub) error {
		s, err := staking(gh)
		if err != nil {
			return err
		}
		if err := s.Unstake(ctx.String("addr"), amount, height); err != nil {
			color.Red("unstake error: %s\n", err)
			return err
		}
		color.Green("unstake successfully\n")
		return nil
	})
}

func showPower(ctx *cli.Context) error {
	height, err := cast.ToUint64E(ctx.String("height"))
	if err != nil {
		return fmt.Errorf("parse height error: %w", err)
	}

	return withGovHub(ctx, func(gh *app.GovHub) error {
		addrPower, err := gh.Source().VotingPower(ctx.String("addr"), height)
		if err != nil {
			return err
		}
		total, err := gh.Source().TotalPower(height)
		if err != nil {
			return err
		}
		PrintTable([][]string{
			{"Address", "Power", "Total"},
			{ctx.String("addr"), addrPower.String(), total.String()},
		}, true)
		return nil
	})
}

func fund(ctx *cli.Context) error {
	amount, err := voting.ParseAmount(ctx.String("amount"))
	if err != nil {
		return fmt.Errorf("parse amount error: %w", err)
	}

	return withGovHub(ctx, func(gh *app.GovHub) error {
		if err := gh.Treasury.Fund(ctx.String("denom"), ctx.String("addr"), amount); err != nil {
			color.Red("fund error: %s\n", err)
			return err
		}
		color.Green("fund %s %s to %s successfully\n", amount, ctx.String("denom"), ctx.String("addr"))
		return nil
	})
}

func showBalance(ctx *cli.Context) error {
	return withGovHub(ctx, func(gh *app.GovHub) error {
		balance, err := gh.Treasury.Balance(ctx.String("denom"), ctx.String("addr"))
		if err != nil {
			return err
		}
		fmt.Printf("%s %s\n", balance, ctx.String("denom"))
		return nil
	})
}
