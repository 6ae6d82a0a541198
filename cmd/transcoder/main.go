// Package main provides the transcoder CLI.
//
// Commands:
//
//	transcoder translate    -config transcoder.yaml -direction cpp-to-pseudo [-text "..."]
//	transcoder inspect      -weights model.safetensors [-config transcoder.yaml]
//	transcoder init-weights -config transcoder.yaml -out model.safetensors
//	transcoder config       print the default configuration
//	transcoder version
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

const version = "v0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// command is one CLI subcommand.
type command struct {
	name    string
	summary string
	run     func(args []string, stdin io.Reader, stdout, stderr io.Writer) error
}

func commands() []command {
	return []command{
		{"translate", "Translate tokens between C++ and pseudocode", runTranslate},
		{"inspect", "List the tensors of a weights file and check them against a config", runInspect},
		{"init-weights", "Write randomly initialized weights for a config", runInitWeights},
		{"config", "Print the default configuration", runConfig},
		{"version", "Show version", runVersion},
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(stdout)
		return 0
	}

	for _, c := range commands() {
		if c.name != args[0] {
			continue
		}
		err := c.run(args[1:], stdin, stdout, stderr)
		switch {
		case err == nil:
			return 0
		case errors.Is(err, flag.ErrHelp):
			return 0
		default:
			fmt.Fprintf(stderr, "transcoder %s: %v\n", c.name, err)
			return 1
		}
	}

	fmt.Fprintf(stderr, "transcoder: unknown command %q\n\n", args[0])
	usage(stderr)
	return 2
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "transcoder %s - C++ <-> pseudocode translation\n\n", version)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands() {
		fmt.Fprintf(w, "  %-13s %s\n", c.name, c.summary)
	}
}

func runVersion(_ []string, _ io.Reader, stdout, _ io.Writer) error {
	fmt.Fprintf(stdout, "transcoder %s\n", version)
	return nil
}

// newFlagSet creates a subcommand flag set that reports errors to stderr.
func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("transcoder "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}
