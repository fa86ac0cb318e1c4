package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gamechat",
		Short: "Gamechat - peer-to-peer UDP voice chat",
		Long: `Gamechat streams microphone audio to a peer over UDP and plays back
whatever arrives, with optional Matrix text chat alongside.`,
	}

	rootCmd.AddCommand(RunCmd())
	rootCmd.AddCommand(DevicesCmd())
	rootCmd.AddCommand(SessionsCmd())
	rootCmd.AddCommand(VersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
