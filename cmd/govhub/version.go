package main

import (
	"fmt"

	"github.com/meshplus/govhub"
	"github.com/urfave/cli"
)

func versionCMD() cli.Command {
	return cli.Command{
		Name:   "version",
		Usage:  "GovHub version",
		Action: version,
	}
}

func version(ctx *cli.Context) error {
	printVersion()

	return nil
}

func printVersion() {
	fmt.Printf("GovHub version: %s-%s-%s\n", govhub.CurrentVersion, govhub.CurrentBranch, govhub.CurrentCommit)
	fmt.Printf("App build date: %s\n", govhub.BuildDate)
	fmt.Printf("System version: %s\n", govhub.Platform)
	fmt.Printf("Golang version: %s\n", govhub.GoVersion)
	fmt.Println()
}
