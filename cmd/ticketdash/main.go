package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"ticketdash/internal/app"
	"ticketdash/internal/config"
	"ticketdash/internal/connectors"
	dirconnector "ticketdash/internal/connectors/dir"
	"ticketdash/internal/dashboard"
	"ticketdash/internal/i18n"
	"ticketdash/internal/pipeline"
	"ticketdash/internal/server"
	"ticketdash/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	log, err := app.NewLogger(cfg)
	must(err)
	defer func() { _ = log.Sync() }()

	cmd := os.Args[1]
	switch cmd {
	case "serve":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		addr := fs.String("addr", cfg.HTTPAddr, "listen address")
		refresh := fs.Bool("refresh", true, "run the scheduled refresher alongside the server")
		_ = fs.Parse(os.Args[2:])

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		a, err := app.New(ctx, cfg, log, prometheus.DefaultRegisterer)
		must(err)
		defer a.Close()

		srv, err := server.New(a.Dash, log.Named("http"), a.Metrics, nil)
		must(err)
		httpServer := srv.HTTPServer(*addr)

		if *refresh {
			go func() {
				if err := a.Refresher.Run(ctx); err != nil {
					log.Error("refresher stopped", zap.Error(err))
				}
			}()
		}
		go func() {
			<-ctx.Done()
			shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
			defer stop()
			_ = httpServer.Shutdown(shutdownCtx)
		}()

		log.Info("starting server", zap.String("addr", *addr), zap.String("folderId", cfg.FolderID))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			must(err)
		}
	case "sync":
		a, err := app.New(context.Background(), cfg, log, nil)
		must(err)
		defer a.Close()
		res, err := a.Refresher.RunCycle(context.Background())
		must(err)
		r := res.Report
		fmt.Printf("sync done folder=%s listed=%d dataDocs=%d records=%d skipped=%d\n", r.FolderID, r.Listed, r.DataDocs, r.Records, r.Skipped)
		for _, d := range r.Documents {
			if d.Status == "skipped" {
				fmt.Printf("  skipped %s: %s\n", d.Name, d.Reason)
			}
		}
		if res.ExportPath != "" {
			fmt.Printf("exported %s\n", res.ExportPath)
		}
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		folder := fs.String("folder", cfg.FolderID, "folder id of the stored snapshot")
		out := fs.String("out", "", "output xlsx path (default OUTPUT_DIR/Report_<today>.xlsx)")
		filters := bindFilterFlags(fs)
		_ = fs.Parse(os.Args[2:])

		res := querySnapshot(cfg, log, *folder, filters)
		path := strings.TrimSpace(*out)
		if path == "" {
			path = filepath.Join(cfg.OutputDir, pipeline.ReportFileName(time.Now().In(cfg.Location())))
		}
		must(pipeline.ExportToXLSX(res.Rows, res.Summary, path))
		fmt.Printf("exported %d rows to %s\n", res.Rows.Len(), path)
	case "stats":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		folder := fs.String("folder", cfg.FolderID, "folder id of the stored snapshot")
		lang := fs.String("lang", cfg.DefaultLanguage, "FR|EN|AR")
		filters := bindFilterFlags(fs)
		_ = fs.Parse(os.Args[2:])

		res := querySnapshot(cfg, log, *folder, filters)
		printSummary(i18n.Get(*lang), res.Summary)
	case "runs":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "number of runs")
		_ = fs.Parse(os.Args[2:])

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()
		runs, err := db.ListRuns(*limit)
		must(err)
		for _, r := range runs {
			fmt.Printf("%d %s folder=%s records=%d skipped=%d fetch_ms=%.0f at=%s\n",
				r.ID, r.TraceID, r.FolderID, r.Counts["records"], r.Counts["skipped"], r.Timings["fetch_ms"], r.CreatedAt)
		}
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "directory of ticket documents")
		output := fs.String("output", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" || strings.TrimSpace(*output) == "" {
			must(fmt.Errorf("--input and --output are required"))
		}

		local := cfg
		local.StoreProvider = connectors.ProviderDir
		local.LocalDir = *input
		store, err := dirconnector.NewConnector(local)
		must(err)
		fetch := connectors.NewFetchService(store, local, nil, log.Named("fetch"), nil)
		batch, err := fetch.Fetch(context.Background(), ".")
		must(err)

		dash := dashboard.NewService(local, nil, nil, log)
		ds := dash.Normalize(batch.Records)
		must(pipeline.ExportToXLSX(ds, pipeline.SummarizeTop(ds, cfg.Schema.TopN), *output))
		fmt.Printf("run done documents=%d records=%d skipped=%d output=%s\n", batch.Report.DataDocs, ds.Len(), batch.Report.Skipped, *output)
	default:
		usage()
		os.Exit(1)
	}
}

type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

type filterFlags struct {
	from, to, query                   *string
	clients, vehicles, products, drvs multiFlag
	custom                            multiFlag
}

func bindFilterFlags(fs *flag.FlagSet) *filterFlags {
	f := &filterFlags{
		from:  fs.String("from", "", "first day YYYY-MM-DD"),
		to:    fs.String("to", "", "last day YYYY-MM-DD"),
		query: fs.String("q", "", "free text search"),
	}
	fs.Var(&f.clients, "client", "client (repeatable)")
	fs.Var(&f.vehicles, "vehicle", "vehicle (repeatable)")
	fs.Var(&f.products, "product", "product (repeatable)")
	fs.Var(&f.drvs, "driver", "driver (repeatable)")
	fs.Var(&f.custom, "custom", "custom field selection key=value (repeatable)")
	return f
}

func (f *filterFlags) values() (url.Values, error) {
	v := url.Values{}
	v.Set("from", *f.from)
	v.Set("to", *f.to)
	v.Set("q", *f.query)
	v["client"] = f.clients
	v["vehicle"] = f.vehicles
	v["product"] = f.products
	v["driver"] = f.drvs
	for _, kv := range f.custom {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --custom %q, want key=value", kv)
		}
		v.Add(key, value)
	}
	return v, nil
}

func querySnapshot(cfg config.Config, log *zap.Logger, folder string, filters *filterFlags) dashboard.Result {
	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	records, err := db.ListSnapshot(folder)
	must(err)
	if len(records) == 0 {
		must(fmt.Errorf("no stored snapshot for folder %q, run sync first", folder))
	}

	values, err := filters.values()
	must(err)
	criteria, err := pipeline.CriteriaFromValues(values, cfg.Schema, cfg.Location())
	must(err)

	dash := dashboard.NewService(cfg, nil, nil, log)
	return dash.Apply(dashboard.View{Dataset: dash.Normalize(records)}, criteria)
}

func printSummary(loc i18n.Locale, s pipeline.Summary) {
	fmt.Printf("%s: %d\n", loc.Labels.Count, s.Count)
	fmt.Printf("%s: %s\n", loc.Labels.TotalPrice, loc.Money(s.TotalPrice))
	fmt.Printf("%s: %s\n", loc.Labels.TotalWeight, loc.Weight(s.TotalWeight))
	fmt.Printf("%s:\n", loc.Labels.ByHour)
	for _, h := range s.ByHour {
		fmt.Printf("  %02dh %d\n", h.Hour, h.Count)
	}
	fmt.Printf("%s:\n", loc.Labels.TopProducts)
	for _, p := range s.TopProducts {
		fmt.Printf("  %s %d\n", p.Product, p.Count)
	}
}

func usage() {
	fmt.Println("usage: ticketdash <command>")
	fmt.Println("commands:")
	fmt.Println("  serve [--addr=:8080] [--refresh=true]")
	fmt.Println("  sync")
	fmt.Println("  export:xlsx [--folder=...] [--out=...xlsx] [filters]")
	fmt.Println("  stats [--folder=...] [--lang=FR|EN|AR] [filters]")
	fmt.Println("  runs [--limit=20]")
	fmt.Println("  run --input=./tickets --output=./out/report.xlsx")
	fmt.Println("filters: --from=YYYY-MM-DD --to=YYYY-MM-DD --client=.. --vehicle=.. --product=.. --driver=.. --custom=ex1=.. --q=..")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
