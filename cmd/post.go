package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/BatikanHyt/postbench/pkg/helpers"
	"github.com/BatikanHyt/postbench/pkg/protocols"
	"github.com/BatikanHyt/postbench/pkg/report"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var postCmd = &cobra.Command{
	Use:     "post [URL]",
	Short:   "Benchmark a URL with concurrent POST requests",
	Long:    "Start N workers that each POST the same body R times in a row, then print the statistics",
	Args:    cobra.MaximumNArgs(1),
	PreRunE: validatePostArgs,
	RunE:    runPostCmd,
}

func init() {
	addPostFlags(postCmd.Flags())
	rootCmd.AddCommand(postCmd)
}

func addPostFlags(f *pflag.FlagSet) {
	f.String("url", "", "Target URL, can also be given as argument")
	f.IntP("concurrency", "c", protocols.DefaultConcurrency, "Number of concurrent workers")
	f.IntP("requests-per-worker", "n", protocols.DefaultRequestsPerWorker, "Number of sequential requests sent by each worker")
	f.Int("pool-max-idle-per-host", protocols.DefaultPoolMaxIdlePerHost, "Max idle connections kept per destination host")
	f.StringP("body", "b", "", "HTTP body to send")
	f.StringP("body-file", "f", "", "File to send as http body, wins over --body")
	f.Bool("http2", false, "Use HTTP/2, cleartext h2c for http targets")
	f.StringP("output", "o", report.FormatText, "Output format (text, json)")
	f.String("metrics-addr", "", "Serve prometheus metrics on this address while running")
	f.Duration("progress", 0, "Print progress at this interval, 0 disables it")
	f.BoolP("quiet", "q", false, "Do not log failed requests")
}

func validatePostArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		conf.Set("url", args[0])
	}
	if conf.GetString("url") == "" {
		return errors.New("Need to define target URL")
	}
	if output := conf.GetString("output"); !helpers.Contains(report.Formats, output) {
		return fmt.Errorf("Invalid output format %s. Valid formats: %v", output, report.Formats)
	}
	return nil
}

func runPostCmd(cmd *cobra.Command, args []string) error {
	cfg, err := newRunConfig(conf, afero.NewOsFs())
	if err != nil {
		return err
	}
	runner, err := protocols.NewRunner(cfg)
	if err != nil {
		return err
	}
	runner.Logger = log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
	if conf.GetBool("quiet") {
		runner.Logger = log.New(io.Discard, "", 0)
	}

	if addr := conf.GetString("metrics-addr"); addr != "" {
		srv := startMetricsServer(addr, runner.Stats, runner.Logger)
		defer srv.Close()
	}
	stopProgress := watchProgress(conf.GetDuration("progress"), runner.Stats, cfg.TotalRequests(), cmd.ErrOrStderr())

	fmt.Fprintf(cmd.ErrOrStderr(), "Running POST bench for url %s with %d workers x %d requests\n",
		cfg.URL, cfg.Concurrency, cfg.RequestsPerWorker)
	res, err := runner.Run(cmd.Context())
	stopProgress()
	if err != nil {
		return err
	}
	return report.Write(cmd.OutOrStdout(), conf.GetString("output"), res)
}
