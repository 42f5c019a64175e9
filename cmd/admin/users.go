package main

import (
	"fmt"
	"strconv"
	"time"

	"cecilia/internal/bootstrap"
	"cecilia/internal/repository"
	"cecilia/internal/service"

	"github.com/spf13/cobra"
)

var (
	userEmail    string
	userName     string
	userPassword string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage admin accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List admin accounts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		users, err := userService(rt).ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), users)
		}

		rows := make([][]string, len(users))
		for i, u := range users {
			rows[i] = []string{
				strconv.FormatUint(uint64(u.ID), 10),
				u.Email,
				u.Name,
				u.CreatedAt.Format(time.DateOnly),
			}
		}
		return printTable(cmd.OutOrStdout(), []string{"ID", "EMAIL", "NAME", "CREATED"}, rows)
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	Long: `Create an admin account. Passwords need at least 8 characters.

Examples:
  cecilia-admin users create --email ana@cecilia.digital --password s3cret-pass
  cecilia-admin users create --email ana@cecilia.digital --name Ana --password s3cret-pass`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		user, err := userService(rt).CreateUser(cmd.Context(), service.CreateUserInput{
			Email:    userEmail,
			Name:     userName,
			Password: userPassword,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), user)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %s (ID %d)\n", user.Email, user.ID)
		return err
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an admin account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil || id == 0 {
			return fmt.Errorf("invalid user id %q", args[0])
		}

		rt, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := userService(rt).DeleteUser(cmd.Context(), uint(id)); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted user %d\n", id)
		return err
	},
}

var ensureAdminCmd = &cobra.Command{
	Use:   "ensure-admin",
	Short: "Create the ADMIN_EMAIL account if it does not exist",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		outcome, err := bootstrap.EnsureAdmin(cmd.Context(), rt.cfg, userService(rt))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "admin account: %s\n", outcome)
		return err
	},
}

func userService(rt *runtime) *service.UserService {
	return service.NewUserService(repository.NewUserRepository(rt.db))
}

func init() {
	usersCreateCmd.Flags().StringVar(&userEmail, "email", "", "Account email (required)")
	usersCreateCmd.Flags().StringVar(&userName, "name", "", "Display name")
	usersCreateCmd.Flags().StringVar(&userPassword, "password", "", "Account password (required)")
	_ = usersCreateCmd.MarkFlagRequired("email")
	_ = usersCreateCmd.MarkFlagRequired("password")

	usersCmd.AddCommand(usersListCmd, usersCreateCmd, usersDeleteCmd)
	rootCmd.AddCommand(usersCmd, ensureAdminCmd)
}
