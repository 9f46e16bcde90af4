// Command ingest builds one legend's indices from a PGN file and prints the data
// quality report and the most played book moves.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/vytor/chesslegends/internal/db"
	"github.com/vytor/chesslegends/internal/identity"
	"github.com/vytor/chesslegends/internal/legend"
	"github.com/vytor/chesslegends/internal/logger"
	"github.com/vytor/chesslegends/internal/models"
	"github.com/vytor/chesslegends/internal/pgn"
	"github.com/vytor/chesslegends/internal/replay"
	"github.com/vytor/chesslegends/internal/repository/sqlite"
	"github.com/vytor/chesslegends/internal/rules"
	"github.com/vytor/chesslegends/internal/snapshot"
)

func main() {
	var (
		legendID    = flag.String("legend", "", "legend ID (required)")
		pgnPath     = flag.String("pgn", "", "PGN file to ingest (required)")
		legendsFile = flag.String("legends", "", "YAML legends registry (default: built-in)")
		dbPath      = flag.String("db", "", "also store records in this SQLite database and build from all stored records")
		outPath     = flag.String("snapshot", "", "write the built snapshot to this file")
		horizon     = flag.Int("horizon", 18, "opening book horizon in full moves")
		workers     = flag.Int("workers", 4, "parallel game replays")
		top         = flag.Int("top", 10, "book entries to print")
		asJSON      = flag.Bool("json", false, "print the report as JSON")
		logLevel    = flag.String("log-level", "WARN", "log level")
	)
	flag.Parse()

	log := logger.New(logger.WithLevel(logger.ParseLevel(*logLevel)), logger.WithOutput(os.Stderr))
	logger.SetDefault(log)

	if *legendID == "" || *pgnPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, options{
		legendID:    *legendID,
		pgnPath:     *pgnPath,
		legendsFile: *legendsFile,
		dbPath:      *dbPath,
		outPath:     *outPath,
		horizon:     *horizon,
		workers:     *workers,
		top:         *top,
		asJSON:      *asJSON,
	}); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

type options struct {
	legendID, pgnPath, legendsFile, dbPath, outPath string
	horizon, workers, top                           int
	asJSON                                          bool
}

type output struct {
	Legend string                    `json:"legend"`
	Report pgn.Report                `json:"report"`
	Stats  legend.Stats              `json:"stats"`
	Book   []models.OpeningBookEntry `json:"book"`
}

func run(ctx context.Context, opts options) error {
	registry := identity.DefaultRegistry()
	if opts.legendsFile != "" {
		reg, err := identity.LoadFile(opts.legendsFile)
		if err != nil {
			return err
		}
		registry = reg
	}

	l, ok := registry.Lookup(opts.legendID)
	if !ok {
		return fmt.Errorf("unknown legend %q", opts.legendID)
	}
	opts.legendID = l.ID

	blob, err := os.ReadFile(opts.pgnPath)
	if err != nil {
		return err
	}

	pipeline := legend.NewPipeline(registry, replay.New(rules.New()), opts.horizon, opts.workers)
	records, report := pgn.Normalize(opts.legendID, string(blob))

	if opts.dbPath != "" {
		database, err := db.Open(opts.dbPath)
		if err != nil {
			return err
		}
		defer database.Close()

		repo := sqlite.NewRecordRepository(database.DB)
		n, err := repo.InsertBatch(ctx, records)
		if err != nil {
			return fmt.Errorf("store records: %w", err)
		}
		logger.Default().Info("stored %d new records", n)
		if records, err = repo.ListByLegend(ctx, models.RecordFilter{LegendID: opts.legendID}); err != nil {
			return err
		}
	}

	snap, err := pipeline.Build(ctx, opts.legendID, records)
	if err != nil {
		return err
	}

	if opts.outPath != "" {
		if err := snapshot.WriteFile(opts.outPath, snap); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
	}

	out := output{Legend: snap.Legend.ID, Report: report, Stats: snap.Stats, Book: snap.Book.Top(opts.top)}
	if opts.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	printText(out)
	return nil
}

func printText(out output) {
	st := out.Stats
	fmt.Printf("%s: %d records, %d with the legend, %d absent\n", out.Legend, st.Games, st.WithLegend, st.Absent)
	fmt.Printf("  recovered fields: %d, empty movetext: %d, truncated replays: %d\n", st.RecoveredFields, st.EmptyMovetext, st.Truncated)
	fmt.Printf("  plies replayed: %d, indexed: %d, positions: %d, book entries: %d\n", st.PliesReplayed, st.PliesIndexed, st.Positions, st.BookEntries)
	for _, tag := range pgn.MetadataTags {
		if n := out.Report.Recovered[tag]; n > 0 {
			fmt.Printf("  %s recovered in %d records\n", tag, n)
		}
	}

	if len(out.Book) == 0 {
		return
	}
	fmt.Println()
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COUNT\tMOVE\tPOSITION")
	for _, e := range out.Book {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", e.Count, e.Move, e.Position)
	}
	tw.Flush()
}
