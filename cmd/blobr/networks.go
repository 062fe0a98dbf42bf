package main

import (
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/blobr/blobr/pkg/celenium"
)

func networkTable() pterm.TableData {
	data := pterm.TableData{{"Network", "API"}}
	for _, name := range celenium.NetworkNames() {
		label := name
		if name == celenium.DefaultNetwork {
			label += " (default)"
		}
		data = append(data, []string{label, celenium.Networks[name]})
	}
	return data
}

func listNetworks(_ *cli.Context) error {
	return pterm.DefaultTable.WithHasHeader().WithData(networkTable()).Render()
}
