package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"amplify_roi/pkg/core/currency"
	"amplify_roi/pkg/core/pipeline"
	"amplify_roi/pkg/core/refdata"
	"amplify_roi/pkg/core/utils"
	"amplify_roi/pkg/core/validate"
	"amplify_roi/pkg/logger"
	"amplify_roi/pkg/models"

	"github.com/rs/zerolog"
)

type options struct {
	mode         string
	data         string
	dataDir      string
	country      string
	businessType string
	scenario     string
	pretty       bool
	verbose      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.mode, "mode", "calculate", "Mode: check or calculate")
	flag.StringVar(&opts.data, "data", "", "Request payload (JSON or Hjson); @path reads a file, - reads stdin")
	flag.StringVar(&opts.dataDir, "data-dir", "./data", "Directory holding countries and business_types catalogues")
	flag.StringVar(&opts.country, "country", "", "Country code (overrides the payload)")
	flag.StringVar(&opts.businessType, "business-type", "", "Business type id (overrides the payload)")
	flag.StringVar(&opts.scenario, "scenario", "", "Scenario id (overrides the payload)")
	flag.BoolVar(&opts.pretty, "pretty", true, "Indent JSON output")
	flag.BoolVar(&opts.verbose, "v", false, "Debug logging to stderr")
	flag.Parse()

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	log := logger.NewWithWriter(logger.Config{Level: level, Pretty: true}, os.Stderr)

	if err := run(opts, os.Stdin, os.Stdout, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, stdin io.Reader, stdout io.Writer, log zerolog.Logger) error {
	payload, err := readPayload(opts.data, stdin)
	if err != nil {
		return err
	}

	var req models.CalculationRequest
	if _, err := utils.SmartParse(payload, &req); err != nil {
		return fmt.Errorf("invalid request payload: %w", err)
	}
	if opts.country != "" {
		req.Country = opts.country
	}
	if opts.businessType != "" {
		req.BusinessType = opts.businessType
	}
	if opts.scenario != "" {
		req.Scenario = opts.scenario
	}

	registry, err := refdata.LoadFromDirectory(opts.dataDir)
	if err != nil {
		return err
	}
	country, err := registry.Country(req.Country)
	if err != nil {
		return err
	}
	scenario, err := registry.Scenario(req.BusinessType, req.Scenario)
	if err != nil {
		return err
	}

	switch opts.mode {
	case "check":
		if err := validate.ValidateRequest(req); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "OK: %s / %s (%s), %d months\n", country.Name, scenario.Name, country.Currency.Code, req.Timeframe())
		return nil
	case "calculate":
		calculator := pipeline.NewCalculator(currency.NewFormatter(registry.Currencies()...))
		calculator.SetLogger(log)
		result, err := calculator.Compute(req, country, scenario)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(stdout)
		if opts.pretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(result)
	default:
		return fmt.Errorf("unknown mode: %s", opts.mode)
	}
}

func readPayload(data string, stdin io.Reader) ([]byte, error) {
	switch {
	case data == "":
		return nil, fmt.Errorf("no data provided")
	case data == "-":
		return io.ReadAll(stdin)
	case strings.HasPrefix(data, "@"):
		return os.ReadFile(strings.TrimPrefix(data, "@"))
	default:
		return []byte(data), nil
	}
}
