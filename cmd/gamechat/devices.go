package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/petems/gamechat/internal/audio"
	"github.com/petems/gamechat/internal/voice"
)

// DevicesCmd lists the audio devices visible to the engine.
func DevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List available audio devices",
		Run: func(cmd *cobra.Command, args []string) {
			host, err := audio.NewHost()
			if err != nil {
				// Listing still works without a host, it just shows
				// the placeholders the engine would report.
				fmt.Fprintf(os.Stderr, "Audio host unavailable: %v\n", err)
			} else {
				defer host.Close()
			}

			fmt.Println("Input devices:")
			for _, name := range voice.InputDeviceNames(host) {
				fmt.Printf("  %s\n", name)
			}

			fmt.Println("Output devices:")
			for _, name := range voice.OutputDeviceNames(host) {
				fmt.Printf("  %s\n", name)
			}
		},
	}
}
