package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lazypower/rapport/internal/engine"
	"github.com/lazypower/rapport/internal/store"
)

var decayCmd = &cobra.Command{
	Use:   "decay",
	Short: "Run a one-shot decay pass over inactive relationships",
	RunE:  runDecay,
}

func runDecay(cmd *cobra.Command, args []string) error {
	db, err := openConfiguredDB()
	if err != nil {
		return err
	}
	defer db.Close()

	eng := engine.New(db)
	n, err := eng.DecayInactive(context.Background())
	if err != nil {
		return fmt.Errorf("decay pass: %w", err)
	}

	fmt.Printf("decayed %d relationships\n", n)
	return nil
}

func openConfiguredDB() (*store.DB, error) {
	dbPath := os.Getenv("RAPPORT_DB")
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}
