package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/born-ml/transcoder/internal/config"
	"github.com/born-ml/transcoder/internal/registry"
	"github.com/born-ml/transcoder/internal/translate"
)

// runTranslate translates -text, or every non-blank stdin line when -text is
// not given.
func runTranslate(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := newFlagSet("translate", stderr)
	configPath := fs.String("config", "transcoder.yaml", "configuration file")
	direction := fs.String("direction", string(registry.CppToPseudo), "cpp-to-pseudo or pseudo-to-cpp")
	text := fs.String("text", "", "input text (default: read lines from stdin)")
	keepEnd := fs.Bool("keep-end", false, "render a trailing <end> marker")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dir, err := registry.ParseDirection(*direction)
	if err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *keepEnd {
		cfg.Decode.KeepEndMarker = true
	}
	logger, err := cfg.Log.NewLogger(stderr)
	if err != nil {
		return err
	}

	svc, err := translate.Open(cfg, logger)
	if err != nil {
		return err
	}

	if *text != "" {
		out, err := svc.TranslateText(dir, *text)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, out.Text)
		return nil
	}

	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		out, err := svc.TranslateText(dir, line)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, out.Text)
	}
	return scanner.Err()
}
