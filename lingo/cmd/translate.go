package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	httputils "lingo/lingo/utils/http"
	"lingo/lingo/utils/types"

	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:     "translate <language> <text...>",
	Short:   "Translate a sentence with the server's model",
	Example: `  lingo translate Spanish "How are you today?"`,
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireToken(); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		var resp types.TranslateResponse
		err := httputils.PostJSON(ctx, apiURL("/api/chat/translate"), token, types.TranslateRequest{
			TargetLang: args[0],
			Text:       strings.Join(args[1:], " "),
		}, &resp)
		if err != nil {
			return fmt.Errorf("translate: %w", err)
		}
		fmt.Println(resp.TranslatedText)
		return nil
	},
}
