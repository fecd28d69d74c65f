package main

import (
	"fmt"

	"github.com/julien-lin/UniversalPWA-sub002/internal/routing"
)

// cmdValidate checks every declared route pattern and strategy and
// reports problems without generating anything.
func cmdValidate(args []string) error {
	routes, err := projectRoutes()
	if err != nil {
		return err
	}

	problems := routing.ValidatePatterns(routes)
	if len(problems) == 0 {
		fmt.Printf("OK: %d routes, no problems\n", len(routes))
		return nil
	}
	for _, p := range problems {
		fmt.Printf("  %s\n", p)
	}
	return fmt.Errorf("%d problem(s) found", len(problems))
}
