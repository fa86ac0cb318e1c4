package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petems/gamechat/internal/session"
)

// SessionsCmd lists remembered chat logins.
func SessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List remembered chat sessions",
		Run: func(cmd *cobra.Command, args []string) {
			sessions := session.NewStore("").Remembered()
			if len(sessions) == 0 {
				fmt.Println("No remembered sessions")
				return
			}
			for _, s := range sessions {
				fmt.Printf("%s (%s) on %s\n", s.UserID, s.DisplayName, s.Homeserver)
			}
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "forget <user-id>",
		Short: "Forget a remembered session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return session.NewStore("").Delete(args[0])
		},
	})

	return cmd
}
