package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trf5-crawler/collect"
	"trf5-crawler/engine"
	"trf5-crawler/log"
	"trf5-crawler/parse/trf5"
	"trf5-crawler/proxy"
	"trf5-crawler/storage"
	"trf5-crawler/storage/jsonstorage"
	"trf5-crawler/storage/sqldb"
	"trf5-crawler/storage/sqlstorage"
	"trf5-crawler/storage/tablestorage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type crawlFlags struct {
	caseNumbers string
	taxpayerID  string
	workers     int
	rate        float64
	maxPages    int64
	proxies     []string
	browser     bool
	timeout     time.Duration
	retries     int
	cookie      string
	output      string
	format      string
	mysqlDSN    string
	batch       int
	logFile     string
	logLevel    string
}

var crawlOpts crawlFlags

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl case records by case number or taxpayer id",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCrawl(cmd.Context(), crawlOpts, cmd.OutOrStdout())
	},
}

func init() {
	f := crawlCmd.Flags()
	f.StringVar(&crawlOpts.caseNumbers, "processo", "", "comma separated case numbers")
	f.StringVar(&crawlOpts.taxpayerID, "cnpj", "", "CPF or CNPJ whose active cases are crawled")
	f.IntVarP(&crawlOpts.workers, "workers", "w", 3, "number of concurrent fetch workers")
	f.Float64Var(&crawlOpts.rate, "rate", 2, "max requests per second, 0 for unlimited")
	f.Int64Var(&crawlOpts.maxPages, "max-pages", 500, "max listing pages followed for one taxpayer id")
	f.StringSliceVar(&crawlOpts.proxies, "proxy", nil, "proxy URL, repeat to rotate between several")
	f.BoolVar(&crawlOpts.browser, "browser", false, "render pages with headless Chrome")
	f.DurationVar(&crawlOpts.timeout, "timeout", 30*time.Second, "per page fetch timeout")
	f.IntVar(&crawlOpts.retries, "retries", 0, "retry 429 and 5xx responses with backoff this many times")
	f.StringVar(&crawlOpts.cookie, "cookie", "", "cookie header sent with every request")
	f.StringVarP(&crawlOpts.output, "output", "o", "-", "output file, - for stdout")
	f.StringVar(&crawlOpts.format, "format", "json", "output format: json (one record per line) or table")
	f.StringVar(&crawlOpts.mysqlDSN, "mysql-dsn", "", "store records in MySQL instead of JSON lines")
	f.IntVar(&crawlOpts.batch, "batch", 100, "rows per MySQL insert")
	f.StringVar(&crawlOpts.logFile, "log-file", "", "write logs to a rotating file instead of stderr")
	f.StringVar(&crawlOpts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(ctx context.Context, opts crawlFlags, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// log
	level := log.ParseLevel(opts.logLevel)
	plugin := log.NewStderrPlugin(level)
	if opts.logFile != "" {
		var closer io.Closer
		plugin, closer = log.NewFilePlugin(opts.logFile, level)
		defer closer.Close()
	}
	logger := log.NewLogger(plugin)
	defer logger.Sync()

	task, err := trf5.NewTask(
		trf5.Input{CaseNumbers: opts.caseNumbers, TaxpayerID: opts.taxpayerID},
		collect.Property{
			Name:     trf5.TaskName,
			Cookie:   opts.cookie,
			MaxDepth: opts.maxPages,
		},
	)
	if err != nil {
		return fmt.Errorf("%w (use --processo or --cnpj)", err)
	}
	task.Logger = logger
	if opts.rate > 0 {
		task.Limit = rate.NewLimiter(rate.Limit(opts.rate), 1)
	}
	engine.Store.Add(task)

	fetcher, err := newFetcher(opts, logger)
	if err != nil {
		return err
	}

	store, closeStore, err := newStorage(opts, stdout, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	s := engine.NewEngine(
		engine.WithFetcher(fetcher),
		engine.WithLogger(logger),
		engine.WithWorkCount(opts.workers),
		engine.WithSeeds([]*collect.Task{task}),
		engine.WithScheduler(engine.NewSchedule()),
		engine.WithStorage(store),
	)
	logger.Info("crawl started",
		zap.String("processo", opts.caseNumbers),
		zap.String("cnpj", opts.taxpayerID),
		zap.Int("workers", opts.workers),
	)
	if err := s.Run(ctx); err != nil {
		return err
	}
	logger.Info("crawl finished", zap.Int("failed_requests", len(s.Failures())))
	return nil
}

func newFetcher(opts crawlFlags, logger *zap.Logger) (collect.Fetcher, error) {
	if opts.browser {
		return collect.ChromeFetch{Timeout: opts.timeout, Logger: logger}, nil
	}
	var p proxy.ProxyFunc
	if len(opts.proxies) > 0 {
		var err error
		if p, err = proxy.RoundRobinProxySwitcher(opts.proxies...); err != nil {
			return nil, fmt.Errorf("proxy: %w", err)
		}
	}
	if opts.retries > 0 {
		return collect.NewRestyFetch(collect.RestyConfig{
			Timeout: opts.timeout,
			Retries: opts.retries,
			Proxy:   p,
			Logger:  logger,
		}), nil
	}
	return collect.BrowserFetch{Timeout: opts.timeout, Proxy: p, Logger: logger}, nil
}

func newStorage(opts crawlFlags, stdout io.Writer, logger *zap.Logger) (storage.Storage, func(), error) {
	if opts.mysqlDSN != "" {
		db, err := sqldb.New(
			sqldb.WithConnURL(opts.mysqlDSN),
			sqldb.WithLogger(logger.Named("sqldb")),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("mysql: %w", err)
		}
		s := sqlstorage.New(db,
			sqlstorage.WithLogger(logger.Named("sqlstorage")),
			sqlstorage.WithBatchCount(opts.batch),
			sqlstorage.WithFields(engine.GetFields),
		)
		return s, func() { db.Close() }, nil
	}

	w, closeOutput := stdout, func() {}
	if opts.output != "" && opts.output != "-" {
		file, err := os.Create(opts.output)
		if err != nil {
			return nil, nil, fmt.Errorf("create output: %w", err)
		}
		w = file
		closeOutput = func() {
			if err := file.Close(); err != nil {
				logger.Error("close output failed", zap.Error(err))
			}
		}
	}

	switch opts.format {
	case "json", "":
		return jsonstorage.New(w), closeOutput, nil
	case "table":
		return tablestorage.New(w, engine.GetFields), closeOutput, nil
	default:
		closeOutput()
		return nil, nil, fmt.Errorf("unknown output format %q", opts.format)
	}
}
