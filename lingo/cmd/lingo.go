// Command-line client for the lingo server
package main

import (
	"fmt"
	"os"
	"strings"

	"lingo/lingo/utils/color"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	token     string
)

var rootCmd = &cobra.Command{
	Use:   "lingo",
	Short: "Terminal client for the lingo chat server",
	Long: `lingo talks to a lingo server from the terminal: log in, chat with a
friend in real time, translate a sentence, or watch a call room's signaling
traffic.`,
	SilenceUsage: true,
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("LINGO_SERVER", "http://localhost:8000"), "server base url")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("LINGO_TOKEN"), "auth token (see `lingo login`)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(callRelayCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func apiURL(path string) string {
	return strings.TrimRight(serverURL, "/") + path
}

func socketURL() string {
	base := strings.TrimRight(serverURL, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/socket?token=" + token
}

func requireToken() error {
	if token == "" {
		return fmt.Errorf("no token: run `lingo login` and set LINGO_TOKEN or pass --token")
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.ColorError("Error: "+err.Error()))
		os.Exit(1)
	}
}
