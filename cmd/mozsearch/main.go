package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mozsearch/internal/app"
	"mozsearch/internal/logging"
)

type ExitCoder interface {
	ExitCode() int
}

type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }
func (e *exitError) ExitCode() int { return e.code }

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ex ExitCoder
		if errors.As(err, &ex) {
			os.Exit(ex.ExitCode())
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var jsonOutput bool
	var verbose bool

	newSvc := func() (*app.Service, error) {
		svc, err := app.New(app.Options{ConfigPath: configPath})
		if err != nil {
			return nil, err
		}
		logger, err := logging.New(svc.Config.Logging, verbose)
		if err != nil {
			return nil, err
		}
		svc.Logger = logger
		return svc, nil
	}

	cmd := &cobra.Command{
		Use:           "mozsearch",
		Short:         "Compile declarative search engine settings into search.json.mozlz4",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(newInitCmd(&configPath, &jsonOutput))
	cmd.AddCommand(newBuildCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newValidateCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newInspectCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newHashCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newDoctorCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newProfilesCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newVersionCmd(&jsonOutput))

	return cmd
}

func newInitCmd(configPath *string, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := app.InitConfig(*configPath)
			if err != nil {
				return err
			}
			msg := "config already exists at " + path
			if created {
				msg = "wrote default config to " + path
			}
			return print(*jsonOutput, map[string]any{"path": path, "created": created}, msg)
		},
	}
}

func newBuildCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	var profile string
	var dryRun bool
	cmd := &cobra.Command{
		Use:     "build",
		Aliases: []string{"compile", "apply"},
		Short:   "Compile and write search.json.mozlz4 for each profile",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			res, err := svc.Build(context.Background(), app.BuildOptions{Profile: profile, DryRun: dryRun})
			if err != nil {
				return err
			}
			printBuild(*jsonOutput, res)
			return nil
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "only build this profile")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compile without writing")
	return cmd
}

func newValidateCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	var profile string
	cmd := &cobra.Command{
		Use:     "validate",
		Aliases: []string{"verify", "lint"},
		Short:   "Load the config and compile every profile without writing",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			res, err := svc.Validate(context.Background(), profile)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return print(true, map[string]any{"valid": true, "profiles": res.Profiles}, "")
			}
			printWarnings(res)
			return print(false, nil, fmt.Sprintf("validation passed (%d profiles)", len(res.Profiles)))
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "only validate this profile")
	return cmd
}

func newInspectCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	var appName string
	var raw bool
	cmd := &cobra.Command{
		Use:     "inspect <file>",
		Aliases: []string{"show", "cat"},
		Short:   "Decode a search.json.mozlz4 file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			res, err := svc.Inspect(args[0], appName)
			if err != nil {
				return err
			}
			if raw {
				fmt.Println(string(res.Document))
				return nil
			}
			if *jsonOutput {
				return print(true, res, "")
			}
			fmt.Printf("%s (version %d)\n", res.Path, res.Version)
			fmt.Printf("engines: %s\n", strings.Join(res.Engines, ", "))
			if res.Current != "" {
				fmt.Printf("default: %s%s\n", res.Current, hashStatus(res.HashValid))
			}
			if res.Private != "" {
				fmt.Printf("private default: %s%s\n", res.Private, hashStatus(res.PrivateValid))
			}
			fmt.Printf("use saved order: %t\n", res.UseSavedOrder)
			return nil
		},
	}
	cmd.Flags().StringVar(&appName, "app-name", "", "application name used to verify hashes")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the decoded JSON document")
	return cmd
}

func newHashCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	var profileDir string
	var engineName string
	var appName string
	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Compute the verification hash of a default engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(engineName) == "" {
				return fmt.Errorf("HASH_ENGINE: --engine is required")
			}
			if strings.TrimSpace(profileDir) == "" {
				return fmt.Errorf("HASH_PROFILE: --profile-dir is required")
			}
			svc, err := newSvc()
			if err != nil {
				return err
			}
			h, err := svc.Hash(profileDir, engineName, appName)
			if err != nil {
				return err
			}
			return print(*jsonOutput, map[string]string{"engine": engineName, "hash": h}, h)
		},
	}
	cmd.Flags().StringVar(&profileDir, "profile-dir", "", "profile directory")
	cmd.Flags().StringVar(&engineName, "engine", "", "engine name")
	cmd.Flags().StringVar(&appName, "app-name", "", "application name (default: resolved from config)")
	return cmd
}

func newDoctorCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:     "doctor",
		Aliases: []string{"diag", "checkup"},
		Short:   "Run diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			report := svc.DoctorRun(context.Background())
			if *jsonOutput {
				if err := print(true, report, ""); err != nil {
					return err
				}
			} else if len(report.Findings) == 0 {
				fmt.Println("healthy")
			} else {
				fmt.Println("issues found:")
				for _, f := range report.Findings {
					fmt.Printf("- [%s] %s: %s\n", f.Level, f.Code, f.Message)
				}
			}
			if strict && !report.Healthy {
				return &exitError{code: 2, msg: "doctor found errors"}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with status 2 when errors are found")
	return cmd
}

func newProfilesCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	var root string
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List browser profiles from profiles.ini",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			profiles, err := svc.Profiles(root)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return print(true, profiles, "")
			}
			if len(profiles) == 0 {
				fmt.Println("no profiles found")
				return nil
			}
			for _, p := range profiles {
				marker := ""
				if p.Default {
					marker = " (default)"
				}
				fmt.Printf("- %s%s %s\n", p.Name, marker, p.Path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "root", "", "directory containing profiles.ini (default ~/.mozilla/firefox)")
	return cmd
}

func printBuild(jsonOutput bool, res app.BuildResult) {
	if jsonOutput {
		_ = print(true, res, "")
		return
	}
	printWarnings(res)
	for _, p := range res.Profiles {
		verb := "wrote"
		switch {
		case res.DryRun:
			verb = "would write"
		case p.Replaced:
			verb = "replaced"
		}
		fmt.Printf("%s %s: %s (%d engines, %d bytes)\n", p.Profile, verb, p.Artifact, p.Engines, p.Bytes)
		if p.Backup != "" {
			fmt.Printf("  previous file saved to %s\n", p.Backup)
		}
	}
}

func printWarnings(res app.BuildResult) {
	for _, w := range res.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}

func hashStatus(valid *bool) string {
	switch {
	case valid == nil:
		return ""
	case *valid:
		return " (hash ok)"
	default:
		return " (hash mismatch)"
	}
}

func print(jsonOutput bool, payload any, message string) error {
	if jsonOutput {
		blob, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(blob))
		return nil
	}
	if message != "" {
		fmt.Println(message)
	}
	return nil
}
