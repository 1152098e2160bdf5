package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	cartCmd "github.com/Alturino/eats/cart/cmd"
	"github.com/Alturino/eats/internal/constants"
	"github.com/Alturino/eats/internal/log"
	"github.com/Alturino/eats/internal/server"
	searchCmd "github.com/Alturino/eats/search/cmd"
)

func Start() {
	logger := log.InitLogger(
		fmt.Sprintf("/var/log/%s.log", constants.AppMain),
		os.Getenv("APPLICATION_ENV"),
	).
		With().
		Str(log.KeyAppName, constants.AppMain).
		Str(log.KeyTag, "main Start").
		Logger()

	logger.Info().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	rootCmd := &cobra.Command{Use: constants.AppMain}
	commands := []*cobra.Command{
		{
			Use:   "serve",
			Short: "Run restaurant and search pages",
			Run: func(cmd *cobra.Command, args []string) {
				server.Run(
					cmd.Context(),
					constants.AppMain,
					cartCmd.AttachRestaurantPage,
					searchCmd.AttachSearchPage,
				)
			},
		},
		{
			Use:   "restaurant",
			Short: "Run restaurant detail page",
			Run: func(cmd *cobra.Command, args []string) {
				server.Run(cmd.Context(), constants.AppRestaurantService, cartCmd.AttachRestaurantPage)
			},
		},
		{
			Use:   "search",
			Short: "Run restaurant search page",
			Run: func(cmd *cobra.Command, args []string) {
				server.Run(cmd.Context(), constants.AppSearchService, searchCmd.AttachSearchPage)
			},
		},
	}
	rootCmd.AddCommand(commands...)
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
