// imeshim-check exercises a dialog session from the command line: it
// loads a preset, pushes a UTF-8 edit through the engine, and prints the
// committed native buffer.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"imeshim/internal/config"
	"imeshim/internal/dialog"
	"imeshim/internal/logging"
)

var (
	configPath = flag.String("config", "", "path to config file")
	verbose    = flag.Bool("v", false, "enable debug logging")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)

	switch cmd {
	case "preset":
		cmdPreset()
	case "roundtrip":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "Usage: imeshim-check roundtrip <text>")
			os.Exit(1)
		}
		cmdRoundtrip(flag.Arg(1))
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `imeshim-check - Dialog engine check utility for imeshim

Usage: imeshim-check [options] <command> [args]

Commands:
  preset            Print the effective dialog preset
  roundtrip <text>  Push a UTF-8 edit through a dialog session and
                    print the committed native buffer
  help              Show this help message

Options:
  -config <path>  Path to config file (default: platform config dir)
  -v              Enable debug logging`)
}

func loadConfig() *config.Config {
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func newLogger(cfg *config.Config) *logging.Config {
	lc, err := cfg.LoggingSetup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in logging config: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		lc.Level = logging.LevelDebug
	}
	return lc
}

func cmdPreset() {
	cfg := loadConfig()

	out, err := json.MarshalIndent(cfg.Preset, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func cmdRoundtrip(text string) {
	cfg := loadConfig()

	log, err := logging.New(newLogger(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	dc, err := cfg.DialogConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	dc.Logger = log

	native := make([]uint16, dc.MaxTextLen+1)
	state, err := dialog.New(dc, native)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating dialog state: %v\n", err)
		os.Exit(1)
	}
	defer state.Close()

	if err := state.SetFromUTF8Edit([]byte(text)); err != nil {
		fmt.Fprintf(os.Stderr, "Edit rejected: %v\n", err)
		os.Exit(1)
	}
	if state.UTF8Text() != text {
		// A preset filter vetoed or rewrote the edit.
		fmt.Printf("filtered:   %q -> %q\n", text, state.UTF8Text())
	}

	if err := state.CommitToCaller(); err != nil {
		fmt.Fprintf(os.Stderr, "Commit failed: %v\n", err)
		os.Exit(1)
	}

	committed := state.NativeText()
	fmt.Printf("text:       %s\n", state.UTF8Text())
	fmt.Printf("units:      %d of %d\n", len(committed), dc.MaxTextLen)
	fmt.Printf("dirty:      %v\n", state.Dirty())
	fmt.Print("native:     ")
	for i, u := range committed {
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Printf("%04X", u)
	}
	fmt.Println()
}
