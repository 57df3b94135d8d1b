// Command ntagemu hosts a single emulated NTAG21x/UltramanZ tag and drives
// its session FSM from either an interactive raw-mode menu or a scripted
// file of hex frames.
package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/barnettlynn/ntag21x/internal/config"
	"github.com/barnettlynn/ntag21x/internal/storage"
	"github.com/barnettlynn/ntag21x/pkg/ntag21x"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runCmd(os.Args[2:])
	case "script":
		scriptCmd(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: ntagemu <run|script> -config <path> [options]\n")
}

func setupLogging(verbose bool, logFormat string) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if logFormat == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	}
}

// loadSession builds a Session from a config file, creating a fresh card
// image (seeded per cfg.Device) if none is persisted yet at
// cfg.Runtime.ImageFile.
func loadSession(cfg *config.Config) (*ntag21x.Session, error) {
	variant := parseVariant(cfg.Device.Variant)
	profile := ntag21x.ProfileFor(variant)

	var image []byte
	if storage.Exists(cfg.Runtime.ImageFile) {
		var err error
		image, err = storage.Load(cfg.Runtime.ImageFile, profile.PageCount*4)
		if err != nil {
			return nil, err
		}
	} else {
		image = ntag21x.NewBlankImage(profile)
		mem := ntag21x.NewMemoryView(image, false)
		auth0 := byte(profile.PageCount)
		if cfg.Device.AUTH0 != nil {
			auth0 = byte(*cfg.Device.AUTH0)
		}
		ntag21x.ApplySeed(mem, profile, ntag21x.Seed{
			UID:      cfg.UID(),
			PWD:      cfg.PWD(),
			PACK:     cfg.PACK(),
			AUTH0:    auth0,
			ReadProt: cfg.Device.ReadProt,
		})
		if err := storage.Save(cfg.Runtime.ImageFile, image); err != nil {
			return nil, err
		}
	}

	mem := ntag21x.NewMemoryView(image, cfg.Runtime.ReadOnly)
	sess := ntag21x.NewSession(profile, mem, ntag21x.RefCodec{})
	sess.Init()
	return sess, nil
}

func parseVariant(s string) ntag21x.Variant {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ntag215":
		return ntag21x.NTAG215
	case "ntag216":
		return ntag21x.NTAG216
	case "ultramanz":
		return ntag21x.UltramanZ
	default:
		return ntag21x.NTAG213
	}
}

// frameMenu names menu items for the "run" subcommand; each maps to a
// canned, syntactically-valid frame for the current session state.
var frameMenu = []string{
	"REQA",
	"WUPA",
	"SELECT CL1",
	"SELECT CL2",
	"GET_VERSION",
	"READ page 0",
	"HALT",
}

func runCmd(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "path to device config YAML (required)")
	verbose := fs.Bool("v", false, "enable debug logging")
	logFormat := fs.String("log-format", "text", "log format: text or json")
	fs.Parse(args)

	setupLogging(*verbose, *logFormat)
	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -config is required")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	sess, err := loadSession(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading session: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== NTAG21x Emulator ===")
	for {
		choice := selectMenu(fmt.Sprintf("state: %s", sess.CurrentState()), frameMenu)
		if choice < 0 {
			return
		}
		buf, bits := encodeMenuFrame(sess, choice)
		resp := sess.ProcessFrame(buf, bits)
		fmt.Print("  ")
		reportFrame(resp)
	}
}

// reportFrame prints a ProcessFrame response and, for a NAK, logs its
// classified code via slog so operators can grep for a specific failure
// mode (e.g. repeated NOT_AUTHED NAKs) without decoding hex by hand.
func reportFrame(resp ntag21x.Frame) {
	if resp.IsNoResponse() {
		fmt.Println("-> (no response)")
		return
	}
	fmt.Printf("-> %s\n", hex.EncodeToString(resp.Data))
	nakErr, ok := ntag21x.NAKFromFrame(resp)
	if !ok {
		return
	}
	switch {
	case ntag21x.IsNotAuthed(nakErr):
		slog.Debug("command NAKed", "reason", "not authenticated")
	case ntag21x.IsCRCError(nakErr):
		slog.Debug("command NAKed", "reason", "CRC error")
	case ntag21x.IsInvalidArg(nakErr):
		slog.Debug("command NAKed", "reason", "invalid argument")
	default:
		if code, ok := ntag21x.ClassifyNAK(nakErr); ok {
			slog.Debug("command NAKed", "code", code)
		}
	}
}

func encodeMenuFrame(sess *ntag21x.Session, choice int) ([]byte, int) {
	switch frameMenu[choice] {
	case "REQA":
		return []byte{0x26}, 7
	case "WUPA":
		return []byte{0x52}, 7
	case "SELECT CL1", "SELECT CL2":
		// Full SELECT (NVB 0x70) of the card's own cascade-level block,
		// read back from the image: [SEL, NVB, block[0..3], BCC] + CRC_A.
		uid := ntag21x.ReadUID(sess.Mem)
		sel, block := byte(0x93), uid.CL1Block()
		if frameMenu[choice] == "SELECT CL2" {
			sel, block = 0x95, uid.CL2Block()
		}
		bcc := block[0] ^ block[1] ^ block[2] ^ block[3]
		return frameWithCRC(sess, []byte{sel, 0x70, block[0], block[1], block[2], block[3], bcc})
	case "GET_VERSION":
		return frameWithCRC(sess, []byte{ntag21x.CmdGetVersion})
	case "READ page 0":
		return frameWithCRC(sess, []byte{ntag21x.CmdRead, 0x00})
	case "HALT":
		return frameWithCRC(sess, []byte{ntag21x.CmdHalt, 0x00})
	default:
		return nil, 0
	}
}

func frameWithCRC(sess *ntag21x.Session, data []byte) ([]byte, int) {
	out := sess.Codec.AppendCRC(data)
	return out, len(out) * 8
}

func scriptCmd(args []string) {
	fs := flag.NewFlagSet("script", flag.ExitOnError)
	configPath := fs.String("config", "", "path to device config YAML (required)")
	scriptPath := fs.String("script", "", "path to a newline-delimited hex frame script (required)")
	verbose := fs.Bool("v", false, "enable debug logging")
	logFormat := fs.String("log-format", "text", "log format: text or json")
	fs.Parse(args)

	setupLogging(*verbose, *logFormat)
	if *configPath == "" || *scriptPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -config and -script are required")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	sess, err := loadSession(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading session: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Open(*scriptPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.EqualFold(line, "RESET") {
			// Starts a fresh scenario: FSM state only, config cache retained.
			sess.FieldReset()
			fmt.Printf("%d> RESET\n", lineNo)
			continue
		}
		buf, err := hex.DecodeString(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "line %d: invalid hex: %v\n", lineNo, err)
			os.Exit(1)
		}
		resp := sess.ProcessFrame(buf, len(buf)*8)
		fmt.Printf("%d> %s ", lineNo, line)
		reportFrame(resp)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading script: %v\n", err)
		os.Exit(1)
	}

	if err := storage.Save(cfg.Runtime.ImageFile, sess.Mem.Bytes()); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving card image: %v\n", err)
		os.Exit(1)
	}
}

// selectMenu is an arrow-key-driven single selection prompt, raw-mode
// terminal I/O in the same style as keyswap's interactive slot picker.
func selectMenu(prompt string, items []string) int {
	if len(items) == 0 {
		return -1
	}

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting raw mode: %v\r\n", err)
		return -1
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)

	selected := 0
	fmt.Printf("%s\r\n", prompt)
	for i, item := range items {
		if i == selected {
			fmt.Printf("> %s\r\n", item)
		} else {
			fmt.Printf("  %s\r\n", item)
		}
	}

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return -1
		}

		if n == 1 {
			switch buf[0] {
			case 0x0D, 0x0A:
				fmt.Printf("\r\n")
				return selected
			case 0x03:
				term.Restore(int(os.Stdin.Fd()), oldState)
				fmt.Printf("\r\n")
				os.Exit(0)
			case 'q':
				fmt.Printf("\r\n")
				return -1
			}
		} else if n == 3 && buf[0] == 0x1B && buf[1] == '[' {
			needRedraw := false
			switch buf[2] {
			case 'A':
				if selected > 0 {
					selected--
					needRedraw = true
				}
			case 'B':
				if selected < len(items)-1 {
					selected++
					needRedraw = true
				}
			}
			if needRedraw {
				fmt.Printf("\033[%dA", len(items))
				for i, item := range items {
					fmt.Print("\033[2K\r")
					if i == selected {
						fmt.Printf("> %s\r\n", item)
					} else {
						fmt.Printf("  %s\r\n", item)
					}
				}
			}
		}
	}
}
