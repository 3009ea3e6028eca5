package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/okto-vm/okto/internal/emulator"
)

// runCmd runs a ROM in the okto virtual machine until the window closes
var runCmd = &cobra.Command{
	Use:   "run `path/to/rom`",
	Short: "run a ROM in the okto virtual machine",
	Args:  cobra.ExactArgs(1),
	Run:   runOkto,
}

func init() {
	runCmd.Flags().Int("clock", 500, "instruction rate in Hz")
	runCmd.Flags().Int("scale", 16, "window pixel scale factor")
	runCmd.Flags().Bool("trace", false, "print a per-instruction trace to stderr")
	runCmd.Flags().Bool("debug", false, "single-step with a register dump, advancing on Enter")
	viper.BindPFlag("clock", runCmd.Flags().Lookup("clock"))
	viper.BindPFlag("scale", runCmd.Flags().Lookup("scale"))
	viper.BindPFlag("trace", runCmd.Flags().Lookup("trace"))
	viper.BindPFlag("debug", runCmd.Flags().Lookup("debug"))
	viper.SetEnvPrefix("okto")
	viper.AutomaticEnv()
}

func runOkto(cmd *cobra.Command, args []string) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := emulator.Config{
		ClockHz: viper.GetInt("clock"),
		Scale:   viper.GetInt("scale"),
		Trace:   viper.GetBool("trace"),
		Debug:   viper.GetBool("debug"),
	}
	emu, err := emulator.New(args[0], cfg, logger)
	if err != nil {
		fmt.Printf("\nerror creating a new virtual machine: %v\n", err)
		os.Exit(1)
	}

	if err := emu.Run(); err != nil {
		logger.Error("emulation stopped", "err", err)
		os.Exit(1)
	}
}
