// Command baseflow separates baseflow from streamflow records in batch.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"syscall"

	"github.com/hydrographs/baseflow/internal/log"
	"github.com/hydrographs/baseflow/internal/station"
	"github.com/hydrographs/baseflow/internal/storage"
	"github.com/hydrographs/baseflow/pkg/config"
)

var version = "devel"

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	input := flag.String("input", "", "wide-format streamflow CSV (overrides config)")
	stationName := flag.String("station", "", "process only the named station")
	area := flag.Float64("area", 0, "catchment area in km2 for the selected station")
	methods := flag.String("methods", "", "comma-separated method list or \"all\"")
	outputDir := flag.String("output", "", "directory for per-station baseflow CSVs")
	sqlitePath := flag.String("sqlite", "", "SQLite database for results")
	workers := flag.Int("workers", 0, "max concurrent stations (0 = unlimited)")
	debug := flag.Bool("debug", false, "enable debug logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("baseflow %s\n", version)
		os.Exit(0)
	}

	cfg := &config.Config{}
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if *input != "" {
		cfg.Input = *input
	}
	if *methods != "" {
		cfg.Methods = *methods
	}
	if *outputDir != "" {
		cfg.Output.CSVDir = *outputDir
	}
	if *sqlitePath != "" {
		cfg.Output.SQLite = *sqlitePath
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *debug {
		cfg.Debug = true
	}
	if cfg.Input == "" {
		fmt.Fprintln(os.Stderr, "an input CSV is required (-input or config)")
		os.Exit(1)
	}

	if err := log.Init(cfg.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger := log.GetSugaredLogger()

	methodList, err := station.ParseMethods(cfg.Methods)
	if err != nil {
		logger.Fatalf("%v", err)
	}

	series, err := station.ReadCSV(cfg.Input)
	if err != nil {
		logger.Fatalf("reading %s: %v", cfg.Input, err)
	}

	var stations []*station.Station
	for _, s := range series {
		if *stationName != "" && s.Name != *stationName {
			continue
		}
		station.CleanStreamflow(s)
		if len(s.Flow) == 0 {
			logger.Warnf("station %s: no usable samples after cleaning", s.Name)
			continue
		}
		meta := cfg.Station(s.Name)
		if *stationName != "" && *area > 0 {
			meta.AreaKm2 = *area
		}
		st := &station.Station{Series: s, AreaKm2: meta.AreaKm2}
		if meta.FreezePeriod != "" {
			st.Freeze, err = station.ParseFreezePeriod(meta.FreezePeriod)
			if err != nil {
				logger.Fatalf("station %s: %v", s.Name, err)
			}
		}
		stations = append(stations, st)
	}
	if len(stations) == 0 {
		logger.Fatalf("no stations to process")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	batch := station.NewBatch(logger, station.NewSeparator(logger, methodList), cfg.Workers)
	results, failures := batch.Run(ctx, stations)
	logger.Infof("processed %d stations, %d failed", len(results), len(failures))

	if cfg.Output.CSVDir != "" {
		if err := writeCSVs(cfg.Output.CSVDir, stations, results); err != nil {
			logger.Fatalf("writing CSVs: %v", err)
		}
	}
	if cfg.Output.SQLite != "" {
		store, err := storage.New(cfg.Output.SQLite)
		if err != nil {
			logger.Fatalf("opening %s: %v", cfg.Output.SQLite, err)
		}
		defer store.Close()
		runID, err := store.SaveRun(ctx, results)
		if err != nil {
			logger.Fatalf("saving run: %v", err)
		}
		logger.Infof("saved run %s to %s", runID, cfg.Output.SQLite)
	}

	printSummary(results)
	if len(failures) > 0 {
		os.Exit(1)
	}
}

// writeCSVs emits one CSV per station: date, flow, and one baseflow column
// per completed method.
func writeCSVs(dir string, stations []*station.Station, results map[string]*station.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, st := range stations {
		res, ok := results[st.Series.Name]
		if !ok {
			continue
		}
		methods := sortedMethods(res)

		f, err := os.Create(filepath.Join(dir, st.Series.Name+".csv"))
		if err != nil {
			return err
		}
		w := csv.NewWriter(f)

		header := []string{"date", "flow"}
		for _, m := range methods {
			header = append(header, string(m))
		}
		if err := w.Write(header); err != nil {
			f.Close()
			return err
		}
		for i := range st.Series.Flow {
			row := make([]string, 0, len(header))
			if i < len(st.Series.Dates) {
				row = append(row, st.Series.Dates[i].Format("2006-01-02"))
			} else {
				row = append(row, "")
			}
			row = append(row, strconv.FormatFloat(st.Series.Flow[i], 'g', -1, 64))
			for _, m := range methods {
				row = append(row, strconv.FormatFloat(res.Baseflow[m][i], 'g', -1, 64))
			}
			if err := w.Write(row); err != nil {
				f.Close()
				return err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(results map[string]*station.Result) {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		res := results[name]
		for _, m := range sortedMethods(res) {
			fmt.Printf("%-16s %-10s BFI=%.3f KGE=%.3f", name, m, res.BFI[m], res.KGE[m])
			if p, ok := res.Parameters[m]; ok {
				fmt.Printf(" param=%.4g", p)
			}
			fmt.Println()
		}
		for m, err := range res.Skipped {
			fmt.Printf("%-16s %-10s skipped: %v\n", name, m, err)
		}
	}
}

func sortedMethods(res *station.Result) []station.Method {
	methods := make([]station.Method, 0, len(res.Baseflow))
	for m := range res.Baseflow {
		methods = append(methods, m)
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i] < methods[j] })
	return methods
}
