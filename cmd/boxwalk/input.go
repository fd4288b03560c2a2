package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"boxwalk/pkg/pipeline"
)

const stdinName = "-"

func openInput(cmd *cobra.Command, name string) (io.ReadCloser, error) {
	if name == stdinName {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return f, nil
}

// load runs one input through the pipeline.
func load(cmd *cobra.Command, p *pipeline.Pipeline, name string) (*pipeline.Result, error) {
	in, err := openInput(cmd, name)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	res, err := p.Load(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if res.Layout.Root == nil {
		return nil, fmt.Errorf("%s: document has no root element", name)
	}
	return res, nil
}

// pngName maps an input path to the PNG file written for it.
func pngName(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
}
