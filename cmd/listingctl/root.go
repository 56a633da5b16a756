package main

import (
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"funmarket/internal/domain"
	"funmarket/internal/search"
)

var (
	Version   = "dev"
	CommitSHA = "none"
)

type options struct {
	snapshot string
	query    string
	timezone string
	now      string
	pretty   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "listingctl",
		Short:         "Run listing searches over a local JSON snapshot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&opts.snapshot, "snapshot", "f", "", "snapshot file (JSON); - reads stdin")
	pf.StringVarP(&opts.query, "query", "q", "", `query string, e.g. "city=austin&sort=price_low"`)
	pf.StringVar(&opts.timezone, "tz", "UTC", "reference timezone for calendar dates")
	pf.StringVar(&opts.now, "now", "", "fixed clock (RFC3339) for reproducible output")
	pf.BoolVar(&opts.pretty, "pretty", false, "indent JSON output")

	root.AddCommand(newRunCmd("search", "Filter, sort and page the snapshot", opts, (*search.Engine).Search))
	root.AddCommand(newRunCmd("trending", "Rank the snapshot by trending score", opts, (*search.Engine).Trending))
	root.AddCommand(newRunCmd("new", "List recently added listings", opts, (*search.Engine).Newest))
	root.AddCommand(newVersionCmd())
	return root
}

type runFunc func(*search.Engine, []domain.Listing, domain.Query) domain.Result

func newRunCmd(use, short string, opts *options, run runFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.engine()
			if err != nil {
				return err
			}
			if opts.snapshot == "" {
				return fmt.Errorf("--snapshot is required")
			}
			snapshot, err := loadSnapshot(cmd.InOrStdin(), opts.snapshot, engine.Normalizer())
			if err != nil {
				return err
			}
			values, err := url.ParseQuery(opts.query)
			if err != nil {
				return fmt.Errorf("parse --query: %w", err)
			}
			res := run(engine, snapshot, engine.ParseQuery(values))
			return writeResult(cmd.OutOrStdout(), res, opts.pretty)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "listingctl %s (commit=%s)\n", Version, CommitSHA)
		},
	}
}

func (o *options) engine() (*search.Engine, error) {
	loc, err := time.LoadLocation(o.timezone)
	if err != nil {
		return nil, fmt.Errorf("--tz: %w", err)
	}
	var clock domain.Clock = domain.SystemClock{}
	if o.now != "" {
		t, err := time.Parse(time.RFC3339, o.now)
		if err != nil {
			return nil, fmt.Errorf("--now: %w", err)
		}
		clock = domain.FixedClock(t)
	}
	return search.NewEngine(loc, clock), nil
}

func writeResult(w io.Writer, res domain.Result, pretty bool) error {
	var (
		b   []byte
		err error
	)
	if pretty {
		b, err = json.MarshalIndent(res, "", "  ")
	} else {
		b, err = json.Marshal(res)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
