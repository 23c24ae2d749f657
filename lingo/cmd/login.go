package main

import (
	"context"
	"fmt"
	"time"

	httputils "lingo/lingo/utils/http"
	"lingo/lingo/utils/types"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and print a token",
	Example: `  lingo login --email ana@example.com --password secret1
  export LINGO_TOKEN=$(lingo login --email ana@example.com --password secret1 -q)`,
	RunE: runLogin,
}

var loginQuiet bool

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	loginCmd.Flags().BoolVarP(&loginQuiet, "quiet", "q", false, "print only the token")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var resp types.TokenResponse
	err := httputils.PostJSON(ctx, apiURL("/api/auth/login"), "", types.LoginRequest{
		Email:    loginEmail,
		Password: loginPassword,
	}, &resp)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if loginQuiet {
		fmt.Println(resp.Token)
		return nil
	}
	fmt.Printf("export LINGO_TOKEN=%s\n", resp.Token)
	return nil
}
