package main

import (
	"fmt"
	"os"
)

const version = "0.3.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "universalpwa: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse subcommand from os.Args
	subcmd := "generate"
	args := os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		subcmd = args[0]
		args = args[1:]
	}

	switch subcmd {
	case "generate":
		return cmdGenerate(args)
	case "scan":
		return cmdScan(args)
	case "routes":
		return cmdRoutes(args)
	case "validate":
		return cmdValidate(args)
	case "history":
		return cmdHistory(args)
	case "version":
		fmt.Println("universalpwa " + version)
		return nil
	default:
		return fmt.Errorf("unknown command: %s\nUsage: universalpwa [generate|scan|routes|validate|history|version]", subcmd)
	}
}
