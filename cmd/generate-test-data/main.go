package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/debarkoder/internal/testutil"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		outDir  = flag.String("out", "testdata/fixtures", "output directory relative to the project root")
		pdf     = flag.Bool("pdf", true, "also write a PDF with one fixture per page")
		verbose = flag.Bool("v", false, "Verbose output")
		help    = flag.Bool("h", false, "Show help")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generate synthetic barcode fixtures for debarkoder testing.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  %s                    # Write testdata/fixtures\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -out /tmp/fx -pdf=false\n", os.Args[0])
	}

	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	root, err := testutil.GetProjectRoot()
	if err != nil {
		slog.Error("Failed to find project root", "error", err)
		os.Exit(1)
	}
	if *verbose {
		slog.Info("Project root", "path", root)
	}
	if err := os.Chdir(root); err != nil {
		slog.Error("Failed to change to project root", "error", err)
		os.Exit(1)
	}

	fixtures := testutil.StandardFixtures()
	slog.Info("Generating barcode fixtures...", "dir", *outDir, "count", len(fixtures))
	if err := testutil.WriteFixtures(*outDir, fixtures); err != nil {
		slog.Error("Failed to generate fixtures", "error", err)
		os.Exit(1)
	}
	if *verbose {
		for _, f := range fixtures {
			slog.Info("Fixture", "name", f.Name, "file", f.InputFile, "expected", f.Expected)
		}
	}

	if *pdf {
		out := filepath.Join(*outDir, "fixtures.pdf")
		if err := testutil.WriteFixturePDF(out, *outDir, fixtures); err != nil {
			slog.Error("Failed to generate fixture PDF", "error", err)
			os.Exit(1)
		}
		slog.Info("✓ Generated fixture PDF", "file", out)
	}

	slog.Info("Test data generation completed successfully!")
}
