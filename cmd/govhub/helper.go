package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/cheynewallace/tabby"
	"github.com/fatih/color"
	"github.com/meshplus/govhub/internal/app"
	"github.com/meshplus/govhub/internal/governance/proposal"
	"github.com/meshplus/govhub/internal/governance/voting"
	"github.com/meshplus/govhub/internal/loggers"
	"github.com/meshplus/govhub/internal/repo"
	"github.com/spf13/cast"
	"github.com/urfave/cli"
)

var blockFlags = []cli.Flag{
	cli.StringFlag{
		Name:     "height",
		Usage:    "current block height",
		Required: true,
	},
	cli.StringFlag{
		Name:  "time",
		Usage: "current block time, unix seconds or RFC3339, defaults to now",
	},
}

func loadGovHub(ctx *cli.Context) (*app.GovHub, error) {
	repoRoot, err := repo.PathRootWithDefault(ctx.GlobalString("repo"))
	if err != nil {
		return nil, fmt.Errorf("pathRootWithDefault error: %w", err)
	}

	rep, err := repo.Load(repoRoot, ctx.GlobalString("config"))
	if err != nil {
		return nil, fmt.Errorf("repo load error: %w", err)
	}

	if err := loggers.Initialize(rep.Config); err != nil {
		return nil, fmt.Errorf("initialize loggers error: %w", err)
	}

	return app.NewGovHub(rep)
}

// withGovHub runs fn against a GovHub that is stopped afterwards.
func withGovHub(ctx *cli.Context, fn func(gh *app.GovHub) error) error {
	gh, err := loadGovHub(ctx)
	if err != nil {
		return err
	}
	defer gh.Stop()

	return fn(gh)
}

func parseBlock(ctx *cli.Context) (voting.Block, error) {
	height, err := cast.ToUint64E(ctx.String("height"))
	if err != nil {
		return voting.Block{}, fmt.Errorf("parse height error: %w", err)
	}

	t, err := parseTime(ctx.String("time"))
	if err != nil {
		return voting.Block{}, fmt.Errorf("parse time error: %w", err)
	}

	return voting.Block{Height: height, Time: t}, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	if sec, err := cast.ToInt64E(s); err == nil {
		return time.Unix(sec, 0), nil
	}
	return cast.ToTimeE(s)
}

func parseID(ctx *cli.Context) (uint64, error) {
	id, err := cast.ToUint64E(ctx.String("id"))
	if err != nil {
		return 0, fmt.Errorf("parse proposal id error: %w", err)
	}
	return id, nil
}

func colorStatus(status proposal.Status) string {
	switch status {
	case proposal.StatusPassed, proposal.StatusExecuted:
		return color.GreenString(string(status))
	case proposal.StatusRejected, proposal.StatusClosed, proposal.StatusVetoed, proposal.StatusExecutionFailed:
		return color.RedString(string(status))
	case proposal.StatusVetoTimelock:
		return color.YellowString(string(status))
	default:
		return string(status)
	}
}

func PrintTable(rows [][]string, header bool) {
	// Print the table
	t := tabby.New()
	if header {
		addRow(t, rows[0], header)
		rows = rows[1:]
	}
	for _, row := range rows {
		addRow(t, row, false)
	}
	t.Print()
}

func addRow(t *tabby.Tabby, rawLine []string, header bool) {
	// Convert []string to []interface{}
	row := make([]interface{}, len(rawLine))
	for i, v := range rawLine {
		row[i] = v
	}

	// Add line to the table
	if header {
		t.AddHeader(row...)
	} else {
		t.AddLine(row...)
	}
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
