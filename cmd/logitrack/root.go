package main

import (
	"errors"
	"fmt"
	"os"

	"logitrack-api/client"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultAPI = "http://localhost:8000"

// app is the state shared by every command of one invocation
type app struct {
	apiURL      string
	sessionPath string
	output      string
	verbose     bool

	log    *zap.Logger
	client *client.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "logitrack",
		Short: "LogiTrack shipping from the terminal",
		Long: `logitrack talks to a LogiTrack API server.

Quote rates, book and track shipments, and (for agents and admins) work the
shipment dashboard. Sessions expire after 10 idle minutes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	api := os.Getenv("LOGITRACK_API")
	if api == "" {
		api = defaultAPI
	}
	rootCmd.PersistentFlags().StringVar(&a.apiURL, "api", api, "API base URL (env LOGITRACK_API)")
	rootCmd.PersistentFlags().StringVar(&a.sessionPath, "session", "", "session file (default: user config dir)")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", "table", "output format: table, yaml or json")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log API calls")

	rootCmd.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.registerCmd(),
		a.whoamiCmd(),
		a.servicesCmd(),
		a.ratesCmd(),
		a.bookCmd(),
		a.trackCmd(),
		a.shipmentsCmd(),
		a.updateStatusCmd(),
		a.exportCmd(),
		a.contactCmd(),
	)
	return rootCmd
}

func (a *app) init(cmd *cobra.Command) error {
	switch a.output {
	case "table", "yaml", "json":
	default:
		return fmt.Errorf("unknown output format %q", a.output)
	}

	a.log = zap.NewNop()
	if a.verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		a.log = log
	}

	if a.sessionPath == "" {
		path, err := client.DefaultSessionPath()
		if err != nil {
			return err
		}
		a.sessionPath = path
	}
	session := client.NewSession(a.sessionPath)
	if err := session.Load(); err != nil {
		if !errors.Is(err, client.ErrSessionExpired) {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), styles.warn.Render("Your session expired. Please log in again."))
	}

	a.client = client.New(a.apiURL, session, client.WithLogger(a.log))
	return nil
}
