package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"mozsearch/internal/config"
	"mozsearch/internal/engine"
)

type versionInfo struct {
	Version       string `json:"version"`
	Commit        string `json:"commit"`
	Date          string `json:"date"`
	SchemaVersion int    `json:"schemaVersion"`
	Platform      string `json:"platform"`
}

func currentVersion() versionInfo {
	return versionInfo{
		Version:       config.Version,
		Commit:        config.Commit,
		Date:          config.Date,
		SchemaVersion: engine.SchemaVersion,
		Platform:      runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func newVersionCmd(jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := currentVersion()
			if *jsonOutput {
				return print(true, v, "")
			}
			fmt.Printf("mozsearch %s (%s)\ncommit: %s\nbuilt at: %s\nsearch settings schema: v%d\n",
				v.Version, v.Platform, v.Commit, v.Date, v.SchemaVersion)
			return nil
		},
	}
}
