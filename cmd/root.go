package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tantalor93/dnsrank/internal/logging"
	"github.com/tantalor93/dnsrank/pkg/dnsbench"
	"github.com/tantalor93/dnsrank/pkg/printutils"
	"github.com/tantalor93/dnsrank/pkg/reporter"
)

var (
	// Version is set during release of project during build process.
	Version = "development"

	author = "Ondrej Benkovsky <obenky@gmail.com>"
)

const (
	executorAuto     = "auto"
	executorDig      = "dig"
	executorNslookup = "nslookup"
	executorNative   = "native"
)

var (
	pApp = kingpin.New("dnsrank", "Ranks DNS servers by lookup latency and reliability. "+
		"By default the DNS servers configured on this host are compared with well-known public DNS servers.").Author(author)

	opts options
)

type options struct {
	currentOnly bool
	publicOnly  bool
	top3        bool
	custom      []string

	verbose bool
	json    bool
	color   bool

	executor    string
	protocol    string
	dohMethod   string
	dohProtocol string
	insecure    bool

	timeout     time.Duration
	concurrency int
	rateLimit   int

	distribution bool
	plotDir      string
	plotFormat   string

	prometheus      string
	logRequests     bool
	logRequestsPath string

	domains []string
}

func init() {
	pApp.Flag("current-only", "Test only the DNS servers configured on this host.").
		BoolVar(&opts.currentOnly)

	pApp.Flag("public-only", "Test only the well-known public DNS servers.").
		BoolVar(&opts.publicOnly)

	pApp.Flag("top3", "Quick test against top 3 public DNS servers (Cloudflare, Google, Quad9). Takes precedence over --public-only.").
		BoolVar(&opts.top3)

	pApp.Flag("custom", "Custom DNS server to test (IPv4 or IPv6). Repeatable flag.").
		Short('s').PlaceHolder("SERVER").StringsVar(&opts.custom)

	pApp.Flag("verbose", "Show detailed query results and diagnostics.").
		Short('v').BoolVar(&opts.verbose)

	pApp.Flag("json", "Report results as JSON.").BoolVar(&opts.json)

	pApp.Flag("color", "ANSI Color output. Enabled by default.").
		Default("true").BoolVar(&opts.color)

	pApp.Flag("executor", "Lookup mechanism. 'auto' uses dig when installed and falls back to nslookup, "+
		"'native' resolves in-process without any external tool.").
		Default(executorAuto).EnumVar(&opts.executor, executorAuto, executorDig, executorNslookup, executorNative)

	pApp.Flag("protocol", "Protocol used by the native executor. Supported values: udp, tcp, dot, doh, doq.").
		Default(dnsbench.ProtocolUDP).EnumVar(&opts.protocol,
		dnsbench.ProtocolUDP, dnsbench.ProtocolTCP, dnsbench.ProtocolDoT, dnsbench.ProtocolDoH, dnsbench.ProtocolDoQ)

	pApp.Flag("doh-method", "HTTP method to use for DoH requests. Supported values: get, post.").
		Default(dnsbench.PostHTTPMethod).EnumVar(&opts.dohMethod, dnsbench.GetHTTPMethod, dnsbench.PostHTTPMethod)

	pApp.Flag("doh-protocol", "HTTP protocol to use for DoH requests. Supported values: 1.1, 2 and 3.").
		Default(dnsbench.HTTP1Proto).EnumVar(&opts.dohProtocol, dnsbench.HTTP1Proto, dnsbench.HTTP2Proto, dnsbench.HTTP3Proto)

	pApp.Flag("insecure", "Disables server TLS certificate validation. Applicable for DoT, DoH and DoQ.").
		BoolVar(&opts.insecure)

	pApp.Flag("timeout", "Timeout of a single lookup.").
		Default(dnsbench.DefaultProbeTimeout.String()).DurationVar(&opts.timeout)

	pApp.Flag("concurrency", "Number of concurrent lookups issued against a single server.").
		Short('c').Default(fmt.Sprint(dnsbench.DefaultConcurrency)).IntVar(&opts.concurrency)

	pApp.Flag("rate-limit", "Apply a lookups / second rate limit for each server. 0 means unlimited.").
		Short('l').Default("0").IntVar(&opts.rateLimit)

	pApp.Flag("distribution", "Display distribution histogram of all successful lookups.").
		BoolVar(&opts.distribution)

	pApp.Flag("plot", "Plot benchmark results and export them to the directory.").
		Default("").PlaceHolder("/path/to/folder").StringVar(&opts.plotDir)

	pApp.Flag("plotf", "Format of graphs. Supported formats: png, jpg, svg, pdf.").
		Default(dnsbench.DefaultPlotFormat).EnumVar(&opts.plotFormat, "png", "jpg", "svg", "pdf")

	pApp.Flag("prometheus", "Enables Prometheus metrics endpoint on the specified address. For example :8080.").
		Default("").PlaceHolder(":8080").StringVar(&opts.prometheus)

	pApp.Flag("log-requests", "Log every lookup into the file specified by --log-requests-path.").
		BoolVar(&opts.logRequests)

	pApp.Flag("log-requests-path", "Path to the file, where the lookups are logged.").
		Default(dnsbench.DefaultRequestLogPath).StringVar(&opts.logRequestsPath)

	pApp.Arg("domains", "Domains to resolve against each server. It can also be a local file referenced using @<file-path>, "+
		"with one domain per line. Built-in list of popular domains is used when not provided.").StringsVar(&opts.domains)
}

// Execute starts main logic of command.
func Execute() {
	pApp.Version(Version)
	kingpin.MustParse(pApp.Parse(os.Args[1:]))

	color.NoColor = !opts.color
	logger := logging.Setup(opts.verbose)

	sigsInt := make(chan os.Signal, 8)
	signal.Notify(sigsInt, syscall.SIGINT)

	defer close(sigsInt)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_, ok := <-sigsInt
		if !ok {
			// standard exit based on channel close
			return
		}
		fmt.Fprintf(os.Stderr, "\nCancelling benchmark ^C, again to terminate now.\n")
		cancel()
		<-sigsInt
		os.Exit(1)
	}()

	if opts.prometheus != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			// nolint:gosec
			if err := http.ListenAndServe(opts.prometheus, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("prometheus endpoint failed", "err", err)
			}
		}()
	}

	runner, closeFn, err := opts.newRunner(os.Stdout, logger)
	if err != nil {
		printutils.ErrFprintf(os.Stderr, "There was an error while starting benchmark: %s\n", err.Error())
		os.Exit(1)
	}
	defer closeFn()

	res, err := runner.Run(ctx)
	if err != nil {
		printutils.ErrFprintf(os.Stderr, "There was an error while starting benchmark: %s\n", err.Error())
		closeFn()
		os.Exit(1)
	}

	reportOpts := reporter.Options{
		JSON:         opts.json,
		Distribution: opts.distribution,
		PlotDir:      opts.plotDir,
		PlotFormat:   opts.plotFormat,
	}
	if err := reporter.PrintReport(os.Stdout, res, reportOpts); err != nil {
		printutils.ErrFprintf(os.Stderr, "There was an error while printing report: %s\n", err.Error())
	}
}

// newRunner translates options to dnsbench.Runner, returned function releases resources held by the runner.
func (o *options) newRunner(w io.Writer, logger *slog.Logger) (*dnsbench.Runner, func(), error) {
	closeFn := func() {}

	domains, err := loadDomains(o.domains)
	if err != nil {
		return nil, closeFn, err
	}

	executor, err := o.newExecutor(exec.LookPath)
	if err != nil {
		return nil, closeFn, err
	}

	if o.logRequests {
		f, err := os.OpenFile(o.logRequestsPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, closeFn, fmt.Errorf("failed to open file for request logging: %w", err)
		}
		log.SetOutput(f)
		closeFn = func() {
			_ = f.Close()
		}
	}

	testCurrent, testPublic := o.modes(w)
	return &dnsbench.Runner{
		TestCurrent:   testCurrent,
		TestPublic:    testPublic,
		Top3Only:      o.top3,
		CustomServers: o.custom,
		Benchmark: dnsbench.Benchmark{
			Executor:          executor,
			Domains:           domains,
			Concurrency:       o.concurrency,
			Timeout:           o.timeout,
			RateLimit:         o.rateLimit,
			RequestLogEnabled: o.logRequests,
			Logger:            logger,
		},
		Writer:  w,
		Silent:  o.json,
		Verbose: o.verbose,
		Logger:  logger,
	}, closeFn, nil
}

// modes resolves which groups of servers are tested, --top3 takes precedence over --public-only.
func (o *options) modes(w io.Writer) (testCurrent, testPublic bool) {
	publicOnly := o.publicOnly
	if o.top3 && publicOnly {
		if !o.json {
			printutils.NeutralFprintf(w, "Note: --top3 takes precedence over --public-only\n")
		}
		publicOnly = false
	}
	return !publicOnly, !o.currentOnly
}

// newExecutor returns nil for the auto executor, the runner then selects one on its own.
func (o *options) newExecutor(lookPath func(string) (string, error)) (dnsbench.LookupExecutor, error) {
	switch o.executor {
	case executorNative:
		return &dnsbench.DNSExecutor{
			Protocol:    o.protocol,
			Timeout:     o.timeout,
			DohMethod:   o.dohMethod,
			DohProtocol: o.dohProtocol,
			Insecure:    o.insecure,
		}, nil
	case executorDig:
		if _, err := lookPath(executorDig); err != nil {
			return nil, fmt.Errorf("'dig' command not found: %w", err)
		}
		return &dnsbench.DigExecutor{}, nil
	case executorNslookup:
		if _, err := lookPath(executorNslookup); err != nil {
			return nil, fmt.Errorf("'nslookup' command not found: %w", err)
		}
		return &dnsbench.NslookupExecutor{}, nil
	default:
		return nil, nil
	}
}

// loadDomains expands @file references, nil is returned when no domains are given.
func loadDomains(args []string) ([]string, error) {
	var domains []string
	for _, a := range args {
		if !strings.HasPrefix(a, "@") {
			domains = append(domains, a)
			continue
		}
		fromFile, err := readDomainsFile(strings.TrimPrefix(a, "@"))
		if err != nil {
			return nil, err
		}
		domains = append(domains, fromFile...)
	}
	return domains, nil
}

func readDomainsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open domains file '%s': %w", path, err)
	}
	defer f.Close()

	var domains []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		domains = append(domains, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read domains file '%s': %w", path, err)
	}
	return domains, nil
}
