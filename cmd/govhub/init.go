package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/meshplus/govhub/internal/repo"
	"github.com/urfave/cli"
)

func initCMD() cli.Command {
	return cli.Command{
		Name:   "init",
		Usage:  "Initialize GovHub local configuration",
		Action: initialize,
	}
}

func initialize(ctx *cli.Context) error {
	repoRoot, err := repo.PathRootWithDefault(ctx.GlobalString("repo"))
	if err != nil {
		return fmt.Errorf("pathRootWithDefault error: %w", err)
	}

	fmt.Printf("initializing govhub at %s\n", repoRoot)

	if repo.Initialized(repoRoot) {
		fmt.Println("govhub configuration file already exists")
		fmt.Println("reinitializing would overwrite your configuration, Y/N?")
		input := bufio.NewScanner(os.Stdin)
		input.Scan()
		if input.Text() != "Y" && input.Text() != "y" {
			return nil
		}
	}

	if err := repo.Initialize(repoRoot); err != nil {
		return err
	}
	printLogo()
	return nil
}

func printLogo() {
	fmt.Println()
	fmt.Println("=======================================================")
	fig := figure.NewFigure("GovHub", "slant", true)
	fig.Print()
	fmt.Println()
	fmt.Println("=======================================================")
	fmt.Println()
}
