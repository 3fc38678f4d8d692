package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

// Args are command line arguments.
type Args struct {
	ConfigFile string
}

// newRootCommand builds the command line. run is called with the parsed
// arguments.
func newRootCommand(run func(Args) error) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:           "blablad",
		Short:         "blablad is an IRC server",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args, err := getArgs(configFile)
			if err != nil {
				return err
			}
			return run(args)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Configuration file.")
	if err := cmd.MarkFlagRequired("config"); err != nil {
		panic(err)
	}

	return cmd
}

func getArgs(configFile string) (Args, error) {
	if len(configFile) == 0 {
		return Args{}, fmt.Errorf("you must provide a configuration file")
	}

	configPath, err := filepath.Abs(configFile)
	if err != nil {
		return Args{}, fmt.Errorf("unable to determine absolute path to config file: %s: %s",
			configFile, err)
	}

	return Args{ConfigFile: configPath}, nil
}
