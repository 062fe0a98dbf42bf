package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "blobr",
		Usage: "Monitor blob and rollup activity on Celestia in real time",
		Commands: []*cli.Command{
			{
				Name:   "watch",
				Usage:  "Watch new blocks, blobs and rollups as they are produced",
				Flags:  watchFlags(),
				Action: watch,
			},
			{
				Name:   "networks",
				Usage:  "List the networks blobr can watch",
				Action: listNetworks,
			},
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
