package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/grvsharma1810/pulse/internal/bootstrap"
	"github.com/grvsharma1810/pulse/internal/config"
	"github.com/grvsharma1810/pulse/internal/logger"
	"github.com/grvsharma1810/pulse/internal/version"

	"go.uber.org/zap"
)

func main() {
	// Define flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Usage = printUsage
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		version.PrintVersion()
		os.Exit(0)
	}

	// Check if command is provided
	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	// Handle subcommands
	switch args[0] {
	case "server":
		runServer()
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Usage: %s [OPTIONS] COMMAND\n\n", os.Args[0])
	fmt.Println("Pulse backend: WorkOS sessions and CLI device-code login")
	fmt.Println("\nCommands:")
	fmt.Println("  server    Start the Pulse server")
	fmt.Println("\nOptions:")
	fmt.Println("  -v, --version    Show version information")
	fmt.Println("  -h, --help       Show this help message")
}

func runServer() {
	cfg := config.Load()

	l, err := logger.New(cfg.IsProduction)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = l.Sync() }()

	if err := bootstrap.Run(cfg, l); err != nil {
		l.Fatal("server failed", zap.Error(err))
	}
}
