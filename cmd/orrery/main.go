package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxygene76/orrery/pkg/utils"
)

const (
	appName = "orrery"
	version = "v0.3.0"
)

var (
	cfgFile string
	verbose bool

	// loaded by the root command before any subcommand runs
	config *utils.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Interactive solar system kernel",
	Long: `orrery runs a small animated solar system: a sun, planets on tilted
elliptical orbits, moons, comets and decorative models. It can serve the
system to websocket renderers, record it headless to a snapshot file, and
report orbital statistics.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "init" || cmd.Name() == "help" {
			return nil
		}

		var err error
		config, err = utils.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		if verbose {
			config.Client.LogLevel = "debug"
		}
		return nil
	},
}

// initCmd writes the default configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Long: `Write the default configuration file and create the asset, data and
snapshot directories it refers to.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		path := cfgFile
		if path == "" {
			var err error
			if path, err = utils.GetConfigPath(); err != nil {
				return err
			}
		}
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		fmt.Printf("Initializing orrery %s\n", version)
		if err := utils.SaveConfig(utils.DefaultConfig(), path); err != nil {
			return err
		}

		fmt.Println("\nNext steps:")
		fmt.Println("1. Put textures (<name>.jpg) and models (.obj) into the asset directories")
		fmt.Println("2. Start the server: orrery serve")
		fmt.Println("3. Or record a run: orrery simulate --frames 600 --output run.jsonl")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.orrery/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(orbitCmd)
	rootCmd.AddCommand(seedCmd)

	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
