package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/julien-lin/UniversalPWA-sub002/internal/detect"
)

func cmdScan(args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	d, err := detect.Detect(context.Background(), rootAbs)
	if err != nil {
		return fmt.Errorf("scan %s: %w", rootAbs, err)
	}

	fmt.Printf("Scan: %s\n", rootAbs)
	fmt.Printf("  framework:    %s\n", d.Framework)
	fmt.Printf("  architecture: %s\n", d.Architecture)
	fmt.Printf("  confidence:   %s\n", d.Confidence)
	for _, ind := range d.Indicators {
		fmt.Printf("  indicator:    %s\n", ind)
	}
	return nil
}
