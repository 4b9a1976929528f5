package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"payfile-synth/internal/config"
	"payfile-synth/internal/domain"
	"payfile-synth/internal/gateway"
	"payfile-synth/internal/logger"
	"payfile-synth/internal/usecase"
)

type result struct {
	Namespace string          `json:"namespace"`
	Filename  string          `json:"filename"`
	Path      string          `json:"path"`
	Size      int64           `json:"size"`
	Meta      domain.FileMeta `json:"meta"`
}

func main() {
	// Define command-line flags
	formatName := flag.String("format", "", "File format: SDDirect, Bacs18PaymentLines or EaziPay (required)")
	rows := flag.Int("rows", 0, "Number of rows to generate (required)")
	optional := flag.String("optional", "", "Optional columns: true, false or a comma-separated list of column names")
	invalid := flag.Bool("invalid", false, "Inject invalid rows")
	inlineEdit := flag.Bool("inline-edit", false, "Cap invalid rows for inline editing")
	header := flag.Bool("header", false, "Write a header line where the format supports one")
	dateFormat := flag.String("date-format", "", "EaziPay date format: YYYY-MM-DD, DD-MMM-YYYY or DD/MM/YYYY")
	width := flag.String("width", "", "Bacs18 width variant: narrow or wide")
	outDir := flag.String("out", "", "Output directory (overrides storage.output_dir)")
	namespace := flag.String("namespace", "cli", "Sub-directory of the output directory to write into")
	seed := flag.Int64("seed", 0, "Random seed; 0 draws a fresh one")
	configPath := flag.String("config", "", "Path to a TOML config file")
	writeConfig := flag.String("write-config", "", "Write the effective config as TOML to this path and exit")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *outDir)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *writeConfig != "" {
		if err := config.Save(*writeConfig, cfg); err != nil {
			fmt.Printf("Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config written to %s\n", *writeConfig)
		return
	}

	// Validate required flags
	if *formatName == "" || *rows == 0 {
		fmt.Println("Error: flags -format and -rows are required.")
		flag.Usage()
		os.Exit(1)
	}

	selection, err := parseOptional(*optional)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithOutput(os.Stderr)
	log.SetLevel(cfg.Log.Level)

	// --- Wiring ---
	store, err := gateway.NewLocalFileStore(cfg.Storage.OutputDir)
	if err != nil {
		log.Fatalf("Failed to open output directory: %v", err)
	}

	opts := []usecase.Option{usecase.WithMaxRows(cfg.Generation.MaxRows)}
	if *seed != 0 {
		opts = append(opts, usecase.WithSeed(*seed))
	}
	generation, err := usecase.NewGenerationUseCase(store, log, opts...)
	if err != nil {
		log.Fatalf("Failed to set up generation: %v", err)
	}

	// --- Execute the Usecase ---
	req := domain.GenerationRequest{
		Format:            domain.Format(*formatName),
		RowCount:          *rows,
		OptionalColumns:   selection,
		InjectInvalidRows: *invalid,
		AllowInlineEdit:   *inlineEdit,
		IncludeHeader:     *header,
		DateFormat:        domain.DateFormat(*dateFormat),
		WidthVariant:      domain.WidthVariant(*width),
	}
	file, stored, err := generation.GenerateAndStore(context.Background(), req, *namespace)
	if err != nil {
		log.Fatalf("Generation failed: %v", err)
	}

	// --- Present the Output ---
	output, err := json.MarshalIndent(result{
		Namespace: stored.Namespace,
		Filename:  file.Filename,
		Path:      stored.Path,
		Size:      stored.Size,
		Meta:      file.Meta,
	}, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}

	fmt.Println(string(output))
}

// loadConfig reads the config file, letting -out override the output
// directory.
func loadConfig(path, outDir string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if outDir != "" {
		cfg.Storage.OutputDir = outDir
	}
	return cfg, nil
}

// parseOptional reads -optional as a boolean or a comma-separated allow-list.
func parseOptional(v string) (domain.ColumnSelection, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return domain.ColumnSelection{}, nil
	}
	if all, err := strconv.ParseBool(v); err == nil {
		return domain.ColumnSelection{All: all}, nil
	}

	var names []string
	for _, name := range strings.Split(v, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			return domain.ColumnSelection{}, fmt.Errorf("empty column name in -optional %q", v)
		}
		names = append(names, name)
	}
	return domain.ColumnSelection{Names: names}, nil
}
