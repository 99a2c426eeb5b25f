// Command onecorectl runs administrative tasks against the OneCore database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"onecore/internal/config"
	"onecore/internal/repository/postgres"
	"onecore/internal/service"
)

var rootCmd = &cobra.Command{
	Use:           "onecorectl",
	Short:         "OneCore administration tool",
	Long:          "onecorectl manages OneCore user accounts directly against the configured database.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openAuthService connects to the database and returns an AuthService with a
// close function for the connection.
func openAuthService() (service.AuthService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return service.NewAuthService(postgres.NewUserRepo(db), cfg.JWT), func() { _ = db.Close() }, nil
}
