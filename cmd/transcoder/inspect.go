package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/born-ml/transcoder/internal/config"
	"github.com/born-ml/transcoder/internal/loader"
	"github.com/born-ml/transcoder/internal/nn"
)

// runInspect lists a weights file and, with -config, checks that the file
// loads into the configured network.
func runInspect(args []string, _ io.Reader, stdout, stderr io.Writer) error {
	fs := newFlagSet("inspect", stderr)
	weights := fs.String("weights", "", "SafeTensors weights file (required)")
	configPath := fs.String("config", "", "configuration file to check the weights against")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *weights == "" {
		return errors.New("-weights is required")
	}

	reader, err := loader.NewSafeTensorsReader(*weights)
	if err != nil {
		return err
	}
	defer func() {
		_ = reader.Close() // read-only
	}()

	for k, v := range reader.Metadata() {
		fmt.Fprintf(stdout, "metadata %s=%s\n", k, v)
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDTYPE\tSHAPE\tBYTES")
	var total int64
	for _, name := range reader.TensorNames() {
		info, err := reader.TensorInfo(name)
		if err != nil {
			return err
		}
		size := info.DataOffsets[1] - info.DataOffsets[0]
		total += size
		fmt.Fprintf(tw, "%s\t%s\t%v\t%d\n", name, info.DType, info.Shape, size)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%d tensors, %d bytes\n", len(reader.TensorNames()), total)

	if *configPath == "" {
		return nil
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	return checkWeights(*weights, &cfg.Model, stdout)
}

// checkWeights loads path into a network built from cfg and reports every
// mismatch.
func checkWeights(path string, cfg *nn.Config, stdout io.Writer) error {
	state, err := loader.ReadSafeTensors(path, loader.NewPyTorchMapper())
	if err != nil {
		return err
	}
	model, err := nn.NewSeq2SeqTransformer(cfg)
	if err != nil {
		return err
	}
	if err := model.LoadStateDict(state, true); err != nil {
		fmt.Fprintln(stdout, "weights do not match the configuration:")
		fmt.Fprintln(stdout, err)
		return nn.ErrWeightsMismatch
	}
	fmt.Fprintf(stdout, "weights match the configuration (%d parameters)\n", model.NumParameters())
	return nil
}
