package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/virtfuzz/devilang/internal/devmodel"
	"github.com/virtfuzz/devilang/internal/emit"
)

func main() {
	configPath := flag.String("c", "", "convert a single device config file")
	configDir := flag.String("d", "", "convert every device config in a directory")
	output := flag.String("output", "", "output file for single-file mode (default: <device>.devilang)")
	flag.StringVar(output, "o", "", "output file for single-file mode (shorthand)")
	outputDir := flag.String("output-dir", "", "directory for generated files (default: alongside the input)")
	opsOnly := flag.Bool("ops-only", false, "emit only the ops section")
	bbsOnly := flag.Bool("bbs-only", false, "emit only the basic-block section")
	pathsOnly := flag.Bool("paths-only", false, "emit only the path section")
	funcsOnly := flag.Bool("funcs-only", false, "emit only the function section")
	structsOnly := flag.Bool("structs-only", false, "emit only the DMA structure section")
	flag.Parse()

	if (*configPath == "") == (*configDir == "") {
		fmt.Fprintln(os.Stderr, "Usage: devilang -c <config.json> | -d <config-dir> [--output-dir dir] [-o out] [section flags]")
		os.Exit(1)
	}

	opts := emit.Options{
		OpsOnly:     *opsOnly,
		BlocksOnly:  *bbsOnly,
		PathsOnly:   *pathsOnly,
		FuncsOnly:   *funcsOnly,
		StructsOnly: *structsOnly,
	}

	loader, err := devmodel.NewLoader()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *configPath != "" {
		out := *output
		if out == "" {
			out = outputPath(*configPath, *outputDir)
		}
		if err := convertOne(loader, *configPath, out, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	configs, orphans, err := devmodel.ListConfigs(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, name := range orphans {
		fmt.Fprintf(os.Stderr, "Warning: DMA config %s has no matching device config\n", name)
	}

	for _, path := range configs {
		fmt.Fprintf(os.Stderr, "Converting %s\n", filepath.Base(path))
		if err := convertOne(loader, path, outputPath(path, *outputDir), opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		// The DMA sidecar is a model of its own and gets its own output.
		if dmaPath := devmodel.DMAPathFor(path); dmaPath != "" {
			fmt.Fprintf(os.Stderr, "Converting %s\n", filepath.Base(dmaPath))
			if err := convertOne(loader, dmaPath, outputPath(dmaPath, *outputDir), opts); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}
	}
}

// outputPath derives the .devilang file for a config: same base name, in
// dir when given, otherwise next to the input.
func outputPath(configPath, dir string) string {
	base := filepath.Base(configPath)
	name := base[:len(base)-len(filepath.Ext(base))] + ".devilang"
	if dir == "" {
		dir = filepath.Dir(configPath)
	}
	return filepath.Join(dir, name)
}

func convertOne(loader *devmodel.Loader, configPath, outPath string, opts emit.Options) error {
	m, err := loader.Load(configPath)
	if err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer func() { _ = f.Close() }()

	if err := emit.Convert(m, opts, f); err != nil {
		return fmt.Errorf("converting %s: %w", configPath, err)
	}
	return f.Close()
}
