package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "GovHub"
	app.Usage = "Multiple choice proposal voting for DAOs"
	app.Compiled = time.Now()

	cli.VersionPrinter = func(c *cli.Context) {
		printVersion()
	}

	// global flags
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "repo",
			Usage: "GovHub storage repo path",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "GovHub config file path, copied into the repo",
		},
	}

	app.Commands = []cli.Command{
		configCMD(),
		initCMD(),
		versionCMD(),
		proposalCMD(),
		memberCMD(),
		daoCMD(),
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
