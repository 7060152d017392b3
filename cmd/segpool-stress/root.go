package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/momentics/hioload-segpool/log"
)

var (
	// Global flags
	logLevel string
	logFile  string
)

var rootCmd = &cobra.Command{
	Use:   "segpool-stress",
	Short: "Exercise a segment free pool under concurrent load",
	Long: `segpool-stress runs concurrent acquire/release workers against a
segment free pool while the background reclaimer gives excess free memory
back, then prints the pool state and reclamation counters.`,
	Version: "0.1.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_, err := log.SetLogger(nil, map[string]interface{}{
			"log.level": logLevel,
			"log.file":  logFile,
		})
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level: ignore, fatal, error, warn, info, verbose, debug, trace")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log to file instead of stderr")
}

func execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
