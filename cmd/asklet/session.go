package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/asklet/pkg/asklet/session"
)

var sessionFile string

// sessionCmd manages the shell participant identity
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show or clear the saved shell identity",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved session identifier",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := sessionStore()
		if err != nil {
			return err
		}
		id, ok, err := st.Load()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("No saved session.")
			return nil
		}
		fmt.Println(id)
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the saved session identifier",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := sessionStore()
		if err != nil {
			return err
		}
		if err := st.Clear(); err != nil {
			return err
		}
		logger.Info("session cleared", zap.String("path", st.Path))
		fmt.Println("Session cleared.")
		return nil
	},
}

func init() {
	sessionCmd.PersistentFlags().StringVar(&sessionFile, "session", "", "session marker file")
	sessionCmd.AddCommand(sessionShowCmd, sessionClearCmd)
}

func sessionStore() (*session.FileStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	path := cfg.SessionFile
	if sessionFile != "" {
		path = sessionFile
	}
	return session.NewFileStore(path), nil
}
