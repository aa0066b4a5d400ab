package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opencivic/sahayak/internal/cli"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive eligibility dialogue",
	Long: `Starts an interactive session on the terminal. Say start_apply:<scheme>
to begin an application, grievance:<text> to register a complaint, or
track_status to check on a pending case.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := optionsFromFlags(cmd)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		opts.SessionID, _ = cmd.Flags().GetString("session")

		if err := cli.RunChat(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("session", "s", "", "Session ID to resume (default: a fresh one)")

	// Make 'chat' the default if no command is provided.
	rootCmd.Run = chatCmd.Run
}
