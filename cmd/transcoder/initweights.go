package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/born-ml/transcoder/internal/config"
	"github.com/born-ml/transcoder/internal/loader"
	"github.com/born-ml/transcoder/internal/nn"
)

// runInitWeights writes a randomly initialized checkpoint for the configured
// architecture, useful to exercise the pipeline without trained weights.
func runInitWeights(args []string, _ io.Reader, stdout, stderr io.Writer) error {
	fs := newFlagSet("init-weights", stderr)
	configPath := fs.String("config", "", "configuration file (default: built-in defaults)")
	out := fs.String("out", "", "output SafeTensors file (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return errors.New("-out is required")
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}

	model, err := nn.NewSeq2SeqTransformer(&cfg.Model)
	if err != nil {
		return err
	}
	metadata := map[string]string{
		"format":     "pt",
		"created_by": "transcoder " + version,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}
	if err := loader.WriteSafeTensors(*out, model.StateDict(), metadata); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "wrote %s (%d parameters)\n", *out, model.NumParameters())
	return nil
}

// runConfig prints the default configuration as YAML.
func runConfig(_ []string, _ io.Reader, stdout, _ io.Writer) error {
	data, err := config.Default().Marshal()
	if err != nil {
		return err
	}
	_, err = stdout.Write(data)
	return err
}
