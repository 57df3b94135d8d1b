// Command ultramanzctl applies one UltramanZ "button" mutation to a
// persisted card image, outside of any reader session.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/barnettlynn/ntag21x/internal/config"
	"github.com/barnettlynn/ntag21x/internal/storage"
	"github.com/barnettlynn/ntag21x/pkg/ntag21x"
)

func main() {
	configPath := flag.String("config", "", "path to device config YAML (required)")
	accPos := flag.Bool("acc-pos", false, "press the ACC_POS button")
	accNeg := flag.Bool("acc-neg", false, "press the ACC_NEG button")
	charPos := flag.Bool("char-pos", false, "press the CHAR_POS button")
	charNeg := flag.Bool("char-neg", false, "press the CHAR_NEG button")
	verbose := flag.Bool("v", false, "enable debug logging")
	logFormat := flag.String("log-format", "text", "log format: text or json")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if *logFormat == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	}

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -config is required")
		os.Exit(1)
	}
	flavorName, mtype, err := resolveFlavor(*accPos, *accNeg, *charPos, *charNeg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if strings.ToLower(strings.TrimSpace(cfg.Device.Variant)) != "ultramanz" {
		fmt.Fprintln(os.Stderr, "Error: config.device.variant must be ultramanz")
		os.Exit(1)
	}

	profile := ntag21x.ProfileFor(ntag21x.UltramanZ)
	if !storage.Exists(cfg.Runtime.ImageFile) {
		fmt.Fprintf(os.Stderr, "Error: card image %s does not exist; run ntagemu once to create it\n", cfg.Runtime.ImageFile)
		os.Exit(1)
	}
	image, err := storage.Load(cfg.Runtime.ImageFile, profile.PageCount*4)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading card image: %v\n", err)
		os.Exit(1)
	}

	mem := ntag21x.NewMemoryView(image, false)
	// Seeded from the image's own medal record, not a fresh index=1: this
	// process exits after one press, so the rotating index has to be
	// recovered from the card rather than kept in memory (see ultramanz.go).
	mutator := ntag21x.NewUltramanZMutatorFromImage(mem, mtype)
	mutator.Press(mem, profile, mtype)

	if err := storage.Save(cfg.Runtime.ImageFile, mem.Bytes()); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving card image: %v\n", err)
		os.Exit(1)
	}

	slog.Info("ultramanz button pressed", "flavor", flavorName, "image", cfg.Runtime.ImageFile)
}

// resolveFlavor requires exactly one of the four button flags to be set.
func resolveFlavor(accPos, accNeg, charPos, charNeg bool) (string, byte, error) {
	set := 0
	for _, b := range []bool{accPos, accNeg, charPos, charNeg} {
		if b {
			set++
		}
	}
	if set != 1 {
		return "", 0, fmt.Errorf("exactly one of -acc-pos, -acc-neg, -char-pos, -char-neg is required")
	}
	switch {
	case accPos:
		return "acc-pos", ntag21x.MedalAccPos, nil
	case accNeg:
		return "acc-neg", ntag21x.MedalAccNeg, nil
	case charPos:
		return "char-pos", ntag21x.MedalCharPos, nil
	default:
		return "char-neg", ntag21x.MedalCharNeg, nil
	}
}
