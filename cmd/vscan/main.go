// Command vscan writes the per-period transaction reports for a POS export,
// looks up a single card or cashier, and decrypts protected artifacts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/vscan/internal/config"
	"github.com/JonMunkholm/vscan/internal/core"
	"github.com/JonMunkholm/vscan/internal/crypt"
	"github.com/JonMunkholm/vscan/internal/dataset"
	"github.com/JonMunkholm/vscan/internal/logging"
	"github.com/JonMunkholm/vscan/internal/schema"
	"github.com/JonMunkholm/vscan/internal/summary"
)

func main() {
	// A .env file is optional; variables already set in the shell win.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	slog.SetDefault(logging.New(stderr, cfg.Logging.Level, cfg.Logging.Format))

	switch args[0] {
	case "report":
		err = runReport(ctx, cfg, args[1:], stdout)
	case "lookup":
		err = runLookup(ctx, cfg, args[1:], stdout)
	case "decrypt":
		err = runDecrypt(args[1:], stdout)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return 2
	}

	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		var usage usageError
		if errors.As(err, &usage) {
			fmt.Fprintln(stderr, err)
			return 2
		}
		slog.Error("command failed", "command", args[0], "error", err)
		fmt.Fprintln(stderr, core.FormatUserError(err))
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `vscan - POS transaction report generator

Usage:
  vscan <command> [options]

Commands:
  report    Write the top card and cashier reports for each period
  lookup    Write the report for a single card or cashier
  decrypt   Recover the workbook from a protected artifact
  help      Show this help message

Run 'vscan <command> -h' for the options of a command.
`)
}

// usageError is a bad invocation; it exits with status 2.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

// source selects where the dataset comes from.
type source struct {
	input string
	query string
	dbURL string
}

func (s *source) register(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&s.input, "input", "", "path to an .xlsx or .csv export")
	fs.StringVar(&s.query, "query", "", "SQL query to read transactions from Postgres instead of a file")
	fs.StringVar(&s.dbURL, "db-url", cfg.Database.URL, "Postgres connection string for -query")
}

func (s *source) load(ctx context.Context, cfg *config.Config) (*dataset.Dataset, error) {
	switch {
	case s.input != "" && s.query != "":
		return nil, usageError{"-input and -query are mutually exclusive"}
	case s.input != "":
		return dataset.Load(s.input)
	case s.query != "":
		if s.dbURL == "" {
			return nil, usageError{"-query needs -db-url or DATABASE_URL"}
		}
		pool, err := dataset.OpenPool(ctx, s.dbURL, dataset.PoolOptions{
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		})
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		return dataset.FromQuery(ctx, pool, "postgres", s.query)
	default:
		return nil, usageError{"one of -input or -query is required"}
	}
}

func newService(cfg *config.Config, outDir string) (*core.Service, error) {
	settings := core.SettingsFromConfig(cfg)
	// One run per process: reports land directly in the output directory.
	settings.FlatOutput = true
	if outDir != "" {
		settings.OutputDir = outDir
	}
	return core.NewService(settings, nil, slog.Default())
}

func runReport(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	opts, err := core.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stdout)
	var src source
	src.register(fs, cfg)
	outDir := fs.String("out", cfg.Report.OutputDir, "output directory")
	period := fs.String("period", string(opts.Period), "monthly or whole_range")
	fs.IntVar(&opts.TopNCards, "top-cards", opts.TopNCards, "rows in the card table, 0 to leave it out")
	fs.IntVar(&opts.TopNCashiers, "top-cashiers", opts.TopNCashiers, "rows in the cashier table, 0 to leave it out")
	fs.BoolVar(&opts.Encrypt, "encrypt", opts.Encrypt, "password-protect every report")
	fs.BoolVar(&opts.SeparateCards, "separate-cards", opts.SeparateCards, "split the card table by card prefix")
	fs.BoolVar(&opts.IncludeIntervals, "include-intervals", opts.IncludeIntervals, "add the interval narrative column")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if opts.Period, err = summary.ParseMode(*period); err != nil {
		return usageError{err.Error()}
	}
	if opts.TopNCards < 0 || opts.TopNCashiers < 0 {
		return usageError{"-top-cards and -top-cashiers must be non-negative"}
	}

	ds, err := src.load(ctx, cfg)
	if err != nil {
		return err
	}
	svc, err := newService(cfg, *outDir)
	if err != nil {
		return err
	}

	res, err := svc.Process(ctx, ds, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Run %s: %s (%s schema)\n", res.RunID, res.Input, res.Variant)
	if len(res.Missing) > 0 {
		fmt.Fprintf(stdout, "Columns not found: %s\n", strings.Join(res.Missing, ", "))
	}
	if res.Skipped > 0 {
		fmt.Fprintf(stdout, "Rows without a usable timestamp skipped: %d\n", res.Skipped)
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PERIOD\tROWS\tFILE\tPASSWORD")
	for _, a := range res.Artifacts {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", a.Label, a.Rows, a.Path, a.Password)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if p := svc.RunLogPath(); p != "" {
		fmt.Fprintf(stdout, "Run log: %s\n", p)
	}
	return nil
}

func runLookup(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	fs.SetOutput(stdout)
	var src source
	src.register(fs, cfg)
	outDir := fs.String("out", cfg.Report.OutputDir, "output directory")
	roleName := fs.String("role", string(schema.RoleCard), "card or cashier")
	id := fs.String("id", "", "card number or cashier name")
	opts := core.LookupOptions{
		Encrypt:          cfg.Report.Encrypt,
		IncludeIntervals: cfg.Report.IncludeIntervals,
	}
	fs.BoolVar(&opts.Encrypt, "encrypt", opts.Encrypt, "password-protect the report")
	fs.BoolVar(&opts.IncludeIntervals, "include-intervals", opts.IncludeIntervals, "add the interval narrative")
	if err := fs.Parse(args); err != nil {
		return err
	}

	role, err := schema.ParseRole(*roleName)
	if err != nil || !role.IsEntity() {
		return usageError{fmt.Sprintf("-role must be %s or %s", schema.RoleCard, schema.RoleCashier)}
	}
	if strings.TrimSpace(*id) == "" {
		return usageError{"-id is required"}
	}

	ds, err := src.load(ctx, cfg)
	if err != nil {
		return err
	}
	svc, err := newService(cfg, *outDir)
	if err != nil {
		return err
	}

	res, err := svc.LookupEntity(ctx, ds, role, *id, opts)
	if res == nil {
		return err
	}

	sum := res.Summary
	fmt.Fprintf(stdout, "%s %s: %d transactions in %s\n", role, sum.ID, sum.Count, sum.Period)
	if sum.Count > 0 && !sum.First.IsZero() {
		fmt.Fprintf(stdout, "First: %s  Last: %s\n",
			sum.First.Format(summary.TimeLayout), sum.Last.Format(summary.TimeLayout))
	}
	fmt.Fprintf(stdout, "File: %s\n", res.Artifact.Path)
	if res.Artifact.Password != "" {
		fmt.Fprintf(stdout, "Password: %s\n", res.Artifact.Password)
	}
	return err
}

func runDecrypt(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("decrypt", flag.ContinueOnError)
	fs.SetOutput(stdout)
	in := fs.String("in", "", "protected artifact (.xlsx, .zip or .xlsx.enc)")
	out := fs.String("out", "", "output workbook (default: next to the input)")
	password := fs.String("password", os.Getenv("VSCAN_PASSWORD"), "password from the run log (or VSCAN_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *password == "" {
		return usageError{"-in and -password are required"}
	}

	dst := *out
	if dst == "" {
		dst = crypt.DecryptedName(*in)
	}
	if err := crypt.Decrypt(*in, dst, *password); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Decrypted %s -> %s\n", *in, dst)
	return nil
}
