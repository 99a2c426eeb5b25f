package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"onecore/internal/domain"
	"onecore/internal/service"
)

type sampleUser struct {
	username string
	password string
	email    string
	role     domain.UserRole
}

var sampleUsers = []sampleUser{
	{username: "admin", password: "admin123", email: "admin@example.com", role: domain.RoleAdmin},
	{username: "uploader", password: "uploader123", email: "uploader@example.com", role: domain.RoleUploader},
	{username: "user", password: "user123", email: "user@example.com", role: domain.RoleUser},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the sample admin, uploader and user accounts",
	Long:  "Creates one account per role. Accounts whose username already exists are left untouched.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, closeDB, err := openAuthService()
		if err != nil {
			return err
		}
		defer closeDB()
		_, err = seedUsers(cmd.Context(), svc, cmd.OutOrStdout())
		return err
	},
}

var (
	createUsername string
	createPassword string
	createEmail    string
	createRole     string
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a single account with the given role",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, closeDB, err := openAuthService()
		if err != nil {
			return err
		}
		defer closeDB()
		return createUser(cmd.Context(), svc, cmd.OutOrStdout(), createUsername, createPassword, createEmail, createRole)
	},
}

func init() {
	createUserCmd.Flags().StringVarP(&createUsername, "username", "u", "", "Username (required)")
	createUserCmd.Flags().StringVarP(&createPassword, "password", "p", "", "Password (required)")
	createUserCmd.Flags().StringVarP(&createEmail, "email", "e", "", "Email address")
	createUserCmd.Flags().StringVarP(&createRole, "role", "r", string(domain.RoleUser), "Role: user, uploader or admin")

	for _, name := range []string{"username", "password"} {
		if err := createUserCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}

	rootCmd.AddCommand(seedCmd, createUserCmd)
}

// seedUsers creates the sample accounts and returns how many were new.
func seedUsers(ctx context.Context, svc service.AuthService, out io.Writer) (int, error) {
	created := 0
	for _, u := range sampleUsers {
		email := u.email
		_, err := svc.CreateUser(ctx, service.CreateUserInput{
			Username: u.username,
			Password: u.password,
			Email:    &email,
			Role:     u.role,
		})
		switch {
		case errors.Is(err, domain.ErrDuplicateUsername), errors.Is(err, domain.ErrDuplicateEmail):
			fmt.Fprintf(out, "skipped %s: already exists\n", u.username)
		case err != nil:
			return created, fmt.Errorf("creating %s: %w", u.username, err)
		default:
			created++
			fmt.Fprintf(out, "created %s / %s (role: %s)\n", u.username, u.password, u.role)
		}
	}
	fmt.Fprintf(out, "%d user(s) created\n", created)
	return created, nil
}

func createUser(ctx context.Context, svc service.AuthService, out io.Writer, username, password, email, role string) error {
	input := service.CreateUserInput{
		Username: username,
		Password: password,
		Role:     domain.UserRole(role),
	}
	if email != "" {
		input.Email = &email
	}

	user, err := svc.CreateUser(ctx, input)
	if err != nil {
		return fmt.Errorf("creating %s: %w", username, err)
	}
	fmt.Fprintf(out, "created %s (%s) with role %s\n", user.Username, user.ID, user.Role)
	return nil
}
