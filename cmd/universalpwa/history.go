package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/julien-lin/UniversalPWA-sub002/internal/store/sqlite"
)

func cmdHistory(args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()
	db, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open history database: %w", err)
	}
	defer func() { _ = db.Close() }()

	gens, err := db.ListGenerations(ctx, rootAbs, 20)
	if err != nil {
		return err
	}
	if len(gens) == 0 {
		fmt.Printf("No generations recorded for %s\n", rootAbs)
		return nil
	}

	fmt.Printf("Generations for %s\n", rootAbs)
	for _, g := range gens {
		fmt.Printf("  %s  version=%-18s files=%-4d size=%-8d %s\n",
			g.CreatedAt.Format("2006-01-02 15:04:05"), g.Version, g.Count, g.Size, g.SWPath)
	}
	return nil
}
