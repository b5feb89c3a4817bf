package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/stress-features/config"
	"github.com/maastricht-university/stress-features/logging"
	"github.com/maastricht-university/stress-features/orchestrator"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "stressfeat",
		Short:         "Extract cepstral features from labeled stress recordings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCommand(), newConfigCommand())
	return root
}

func newRunCommand() *cobra.Command {
	var configPath string
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:   "run [input-dir]",
		Short: "Compute feature matrices and aggregated statistics for every .wav file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("bind flags: %w", err)
			}
			conf, used, err := config.Load(configPath)
			if err != nil {
				return err
			}
			config.Overlay(conf, v)
			if len(args) == 1 {
				conf.Paths.Input = args[0]
			}
			if err := conf.Validate(); err != nil {
				return err
			}

			log, err := logging.New(conf.Pipeline.LogLvl, conf.Pipeline.LogFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if used != "" {
				log.WithField("config", used).Debug("loaded configuration")
			}

			p := orchestrator.NewPipeline(conf, orchestrator.WithLogger(log))
			sum, err := p.Run(cmd.Context(), conf.Paths.Input)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(sum, isTerminal(cmd.OutOrStdout())))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	flags.StringP(config.KeyInput, "i", "", "root directory of the labeled recordings")
	flags.StringP(config.KeyOutput, "o", "", "output root for matrices and statistics")
	flags.String(config.KeyLogLevel, "", "log level (debug, info, warn, error)")
	flags.String(config.KeyLogFormat, "", "log format (text or json)")
	flags.String(config.KeyExtractorURL, "", "base URL of a remote feature extraction service")
	return cmd
}

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "sample [path]",
		Short: "Write a sample configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "config.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.CreateSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	})
	return cmd
}
