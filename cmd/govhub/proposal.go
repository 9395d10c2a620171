package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/iancoleman/orderedmap"
	"github.com/meshplus/govhub/internal/app"
	"github.com/meshplus/govhub/internal/governance"
	"github.com/meshplus/govhub/internal/governance/proposal"
	"github.com/meshplus/govhub/internal/governance/voting"
	"github.com/spf13/cast"
	"github.com/urfave/cli"
)

var (
	idFlag = cli.StringFlag{
		Name:     "id",
		Usage:    "proposal id",
		Required: true,
	}
	fromFlag = cli.StringFlag{
		Name:     "from",
		Usage:    "sender address",
		Required: true,
	}
)

func proposalCMD() cli.Command {
	return cli.Command{
		Name:  "proposal",
		Usage: "proposal command",
		Subcommands: cli.Commands{
			cli.Command{
				Name:  "propose",
				Usage: "create a multiple choice proposal",
				Flags: append([]cli.Flag{
					fromFlag,
					cli.StringFlag{
						Name:     "title",
						Usage:    "proposal title",
						Required: true,
					},
					cli.StringFlag{
						Name:  "desc",
						Usage: "proposal description",
					},
					cli.StringSliceFlag{
						Name:  "choice",
						Usage: "choice title, repeat for every choice",
					},
					cli.StringFlag{
						Name:  "options",
						Usage: `choices as json, e.g. '[{"title":"a","msgs":[{"target":"t","payload":"{}"}]}]'`,
					},
				}, blockFlags...),
				Action: propose,
			},
			cli.Command{
				Name:  "vote",
				Usage: "vote for a choice of a proposal",
				Flags: append([]cli.Flag{
					fromFlag,
					idFlag,
					cli.StringFlag{
						Name:     "option",
						Usage:    "choice index",
						Required: true,
					},
					cli.StringFlag{
						Name:  "rationale",
						Usage: "reason of the vote",
					},
				}, blockFlags...),
				Action: vote,
			},
			cli.Command{
				Name:  "rationale",
				Usage: "update the rationale of a cast ballot",
				Flags: append([]cli.Flag{
					fromFlag,
					idFlag,
					cli.StringFlag{
						Name:  "rationale",
						Usage: "reason of the vote",
					},
				}, blockFlags...),
				Action: updateRationale,
			},
			cli.Command{
				Name:   "execute",
				Usage:  "execute a passed proposal",
				Flags:  append([]cli.Flag{fromFlag, idFlag}, blockFlags...),
				Action: execute,
			},
			cli.Command{
				Name:   "close",
				Usage:  "close a rejected proposal",
				Flags:  append([]cli.Flag{idFlag}, blockFlags...),
				Action: closeProposal,
			},
			cli.Command{
				Name:   "veto",
				Usage:  "veto a proposal in its timelock",
				Flags:  append([]cli.Flag{fromFlag, idFlag}, blockFlags...),
				Action: veto,
			},
			cli.Command{
				Name:  "show",
				Usage: "show a proposal with its current status",
				Flags: append([]cli.Flag{
					idFlag,
					cli.BoolFlag{
						Name:  "json",
						Usage: "print the proposal as json",
					},
				}, blockFlags...),
				Action: showProposal,
			},
			cli.Command{
				Name:   "status",
				Usage:  "show the current status of a proposal",
				Flags:  append([]cli.Flag{idFlag}, blockFlags...),
				Action: proposalStatus,
			},
			cli.Command{
				Name:  "list",
				Usage: "list proposals",
				Flags: append([]cli.Flag{
					cli.StringFlag{
						Name:  "start",
						Usage: "list proposals after (or before with --reverse) this id",
						Value: "0",
					},
					cli.IntFlag{
						Name:  "limit",
						Usage: "max number of proposals",
						Value: governance.DefaultQueryLimit,
					},
					cli.BoolFlag{
						Name:  "reverse",
						Usage: "newest first",
					},
				}, blockFlags...),
				Action: listProposals,
			},
			cli.Command{
				Name:  "ballots",
				Usage: "list ballots of a proposal",
				Flags: []cli.Flag{
					idFlag,
					cli.StringFlag{
						Name:  "start",
						Usage: "list ballots of voters after this address",
					},
					cli.IntFlag{
						Name:  "limit",
						Usage: "max number of ballots",
						Value: governance.DefaultQueryLimit,
					},
				},
				Action: listBallots,
			},
			cli.Command{
				Name:   "deposit",
				Usage:  "show the locked deposit of a proposal, or how it was settled",
				Flags:  []cli.Flag{idFlag},
				Action: showDeposit,
			},
		},
	}
}

func parseOptions(ctx *cli.Context) ([]voting.Option, error) {
	if raw := ctx.String("options"); raw != "" {
		var options []voting.Option
		if err := json.Unmarshal([]byte(raw), &options); err != nil {
			return nil, fmt.Errorf("unmarshal options error: %w", err)
		}
		return options, nil
	}

	titles := ctx.StringSlice("choice")
	options := make([]voting.Option, 0, len(titles))
	for _, title := range titles {
		options = append(options, voting.Option{Title: title})
	}
	return options, nil
}

func propose(ctx *cli.Context) error {
	block, err := parseBlock(ctx)
	if err != nil {
		return err
	}
	options, err := parseOptions(ctx)
	if err != nil {
		return err
	}

	return withGovHub(ctx, func(gh *app.GovHub) error {
		id, err := gh.Governance.Propose(block, ctx.String("from"), governance.ProposeArgs{
			Title:       ctx.String("title"),
			Description: ctx.String("desc"),
			Choices:     options,
		})
		if err != nil {
			color.Red("propose error: %s\n", err)
			return err
		}
		color.Green("proposal id is %d\n", id)
		return nil
	})
}

func vote(ctx *cli.Context) error {
	block, err := parseBlock(ctx)
	if err != nil {
		return err
	}
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	option, err := cast.ToUint32E(ctx.String("option"))
	if err != nil {
		return fmt.Errorf("parse option error: %w", err)
	}

	return withGovHub(ctx, func(gh *app.GovHub) error {
		if err := gh.Governance.Vote(block, ctx.String("from"), id, option, ctx.String("rationale")); err != nil {
			color.Red("vote error: %s\n", err)
			return err
		}
		status, err := gh.Governance.CurrentStatus(block, id)
		if err != nil {
			return err
		}
		color.Green("vote successfully, proposal %d is %s\n", id, status)
		return nil
	})
}

func updateRationale(ctx *cli.Context) error {
	block, err := parseBlock(ctx)
	if err != nil {
		return err
	}
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	return withGovHub(ctx, func(gh *app.GovHub) error {
		if err := gh.Governance.UpdateRationale(block, ctx.String("from"), id, ctx.String("rationale")); err != nil {
			color.Red("update rationale error: %s\n", err)
			return err
		}
		color.Green("update rationale successfully\n")
		return nil
	})
}

// proposalCommand runs a status changing command and prints the status
// the proposal ends up in.
func proposalCommand(ctx *cli.Context, name string, fn func(gh *app.GovHub, block voting.Block, id uint64) error) error {
	block, err := parseBlock(ctx)
	if err != nil {
		return err
	}
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	return withGovHub(ctx, func(gh *app.GovHub) error {
		if err := fn(gh, block, id); err != nil {
			color.Red("%s proposal error: %s\n", name, err)
			return err
		}
		status, err := gh.Governance.CurrentStatus(block, id)
		if err != nil {
			return err
		}
		fmt.Printf("proposal %d is %s\n", id, colorStatus(status))
		return nil
	})
}

func execute(ctx *cli.Context) error {
	return proposalCommand(ctx, "execute", func(gh *app.GovHub, block voting.Block, id uint64) error {
		return gh.Governance.Execute(block, ctx.String("from"), id)
	})
}

func closeProposal(ctx *cli.Context) error {
	return proposalCommand(ctx, "close", func(gh *app.GovHub, block voting.Block, id uint64) error {
		return gh.Governance.Close(block, id)
	})
}

func veto(ctx *cli.Context) error {
	return proposalCommand(ctx, "veto", func(gh *app.GovHub, block voting.Block, id uint64) error {
		return gh.Governance.Veto(block, ctx.String("from"), id)
	})
}

func proposalStatus(ctx *cli.Context) error {
	block, err := parseBlock(ctx)
	if err != nil {
		return err
	}
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	return withGovHub(ctx, func(gh *app.GovHub) error {
		status, err := gh.Governance.CurrentStatus(block, id)
		if err != nil {
			return err
		}
		fmt.Printf("proposal %d is %s\n", id, colorStatus(status))
		return nil
	})
}

func showProposal(ctx *cli.Context) error {
	block, err := parseBlock(ctx)
	if err != nil {
		return err
	}
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	return withGovHub(ctx, func(gh *app.GovHub) error {
		p, err := gh.Governance.Proposal(block, id)
		if err != nil {
			return err
		}

		if ctx.Bool("json") {
			s, err := prettyjson.Marshal(p)
			if err != nil {
				return fmt.Errorf("marshal proposal error: %w", err)
			}
			fmt.Println(string(s))
			return nil
		}

		PrintTable([][]string{
			{"ID", strconv.FormatUint(p.ID, 10)},
			{"Title", p.Title},
			{"Description", truncate(p.Description, 60)},
			{"Proposer", p.Proposer},
			{"Status", colorStatus(p.Status)},
			{"Start", strconv.FormatUint(p.StartHeight, 10)},
			{"Expiration", p.Expiration.String()},
			{"Quorum", p.VotingStrategy.GetQuorum().String()},
			{"Total power", p.TotalPower.String()},
		}, false)
		fmt.Println()

		tally, err := tallyTable(p)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(tally, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal tally error: %w", err)
		}
		fmt.Println(string(data))
		return nil
	})
}

// tallyTable maps choice titles to their vote weight in choice order.
func tallyTable(p *proposal.Proposal) (*orderedmap.OrderedMap, error) {
	if len(p.Votes.VoteWeights) != len(p.Choices) {
		return nil, fmt.Errorf("proposal %d has %d choices but %d tallies", p.ID, len(p.Choices), len(p.Votes.VoteWeights))
	}
	tally := orderedmap.New()
	for i, choice := range p.Choices {
		tally.Set(fmt.Sprintf("%d. %s", choice.Index, choice.Title), p.Votes.VoteWeights[i].String())
	}
	return tally, nil
}

func listProposals(ctx *cli.Context) error {
	block, err := parseBlock(ctx)
	if err != nil {
		return err
	}
	start, err := cast.ToUint64E(ctx.String("start"))
	if err != nil {
		return fmt.Errorf("parse start error: %w", err)
	}

	return withGovHub(ctx, func(gh *app.GovHub) error {
		var ps []*proposal.Proposal
		if ctx.Bool("reverse") {
			ps, err = gh.Governance.ReverseProposals(block, start, ctx.Int("limit"))
		} else {
			ps, err = gh.Governance.ListProposals(block, start, ctx.Int("limit"))
		}
		if err != nil {
			return err
		}

		rows := [][]string{{"ID", "Title", "Proposer", "Status", "Expiration", "Choices"}}
		for _, p := range ps {
			rows = append(rows, []string{
				strconv.FormatUint(p.ID, 10),
				truncate(p.Title, 30),
				p.Proposer,
				colorStatus(p.Status),
				p.Expiration.String(),
				strconv.Itoa(len(p.Choices)),
			})
		}
		PrintTable(rows, true)
		return nil
	})
}

func listBallots(ctx *cli.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	return withGovHub(ctx, func(gh *app.GovHub) error {
		ballots, err := gh.Governance.ListBallots(id, ctx.String("start"), ctx.Int("limit"))
		if err != nil {
			return err
		}

		rows := [][]string{{"Voter", "Option", "Power", "Rationale"}}
		for _, b := range ballots {
			rows = append(rows, []string{
				b.Voter,
				strconv.FormatUint(uint64(b.Option), 10),
				b.Power.String(),
				truncate(b.Rationale, 40),
			})
		}
		PrintTable(rows, true)
		return nil
	})
}

func showDeposit(ctx *cli.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	return withGovHub(ctx, func(gh *app.GovHub) error {
		locked, ok, err := gh.Treasury.Escrowed(id)
		if err != nil {
			return err
		}
		if ok {
			color.Yellow("deposit of proposal %d is locked: %s %s from %s\n",
				id, locked.Amount, locked.Denom, locked.Depositor)
			return nil
		}

		record, err := gh.Governance.Deposit(id)
		if err != nil {
			return err
		}
		s, err := prettyjson.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal deposit error: %w", err)
		}
		fmt.Println(string(s))
		return nil
	})
}
