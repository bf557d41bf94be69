package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"logitrack-api/client"
	"logitrack-api/models"

	"github.com/spf13/cobra"
)

func passwordFrom(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("LOGITRACK_PASSWORD"); env != "" {
		return env, nil
	}
	return "", errors.New("password is required (--password or LOGITRACK_PASSWORD)")
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session for later commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordFrom(password)
			if err != nil {
				return err
			}
			user, err := a.client.Login(cmd.Context(), email, pw)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s Logged in as %s (%s)\n", styles.ok.Render("✓"), user.Name, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (env LOGITRACK_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Logout(); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Logged out.\n")
			return nil
		},
	}
}

func (a *app) registerCmd() *cobra.Command {
	var name, email, password, phone string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a client account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordFrom(password)
			if err != nil {
				return err
			}
			user, err := a.client.Register(cmd.Context(), name, email, pw, phone)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s Welcome, %s. Your account is ready.\n", styles.ok.Render("✓"), user.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password, at least 6 characters (env LOGITRACK_PASSWORD)")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.client.Session().Require()
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), user, func(w io.Writer) {
				printf(w, "%s <%s>  role: %s\n", styles.title.Render(user.Name), user.Email, user.Role)
			})
		},
	}
}

// requireStaff gates the dashboard commands
func (a *app) requireStaff() (models.UserInfo, error) {
	user, err := a.client.Session().Require(models.RoleAgent, models.RoleAdmin)
	if errors.Is(err, client.ErrForbidden) {
		return user, fmt.Errorf("%w: agents and admins only", err)
	}
	return user, err
}
