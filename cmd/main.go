package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/syossan27/streamkey-redactor/internal"
	"github.com/syossan27/streamkey-redactor/internal/logging"
	"github.com/syossan27/streamkey-redactor/pkg/redact"
)

const slackWebhookPrefix = "https://hooks.slack.com/"

var (
	namespace    string
	selector     string
	kubeconfig   string
	clusterName  string
	outputFormat string
	alertSlack   string
	logLevel     string
	logFormat    string
)

var rootCmd = &cobra.Command{
	Use:   "streamkey-redactor",
	Short: "Redact stream keys and credentials from RTMP/RTMPS URLs",
	Long: `streamkey-redactor masks the stream key, user-info and query of RTMP-family
URLs so they can be logged, displayed or shared safely. It can sanitize single
URLs, filter log streams, and inspect Kubernetes pod specs for stream keys
stored in plain text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFlags(); err != nil {
			return err
		}
		return logging.Setup(logLevel, logFormat)
	},
}

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize [URL...]",
	Short: "Print the redacted form of each URL (reads stdin when no URL is given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSanitize(args, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

var filterCmd = &cobra.Command{
	Use:   "filter [FILE...]",
	Short: "Copy text to stdout with every RTMP URL redacted (reads stdin when no file is given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runFilter(cmd.InOrStdin(), cmd.OutOrStdout())
		}
		for _, path := range args {
			if err := filterFile(path, cmd.OutOrStdout()); err != nil {
				return err
			}
		}
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Find Kubernetes pods whose specs embed RTMP stream keys in plain text",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text, json")

	inspectCmd.Flags().StringVarP(&namespace, "namespace", "n", "", "Target namespace to inspect (empty for cluster-wide)")
	inspectCmd.Flags().StringVarP(&selector, "selector", "l", "", "Label selector to filter pods")
	inspectCmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "Path to kubeconfig (defaults to ~/.kube/config)")
	inspectCmd.Flags().StringVarP(&outputFormat, "output", "o", "human", "Output format: human, json, yaml")
	inspectCmd.Flags().StringVar(&clusterName, "cluster-name", "kubernetes", "Cluster name shown in reports")
	inspectCmd.Flags().StringVar(&alertSlack, "alert-slack", "", "Slack webhook URL to notify when exposed stream keys are found")

	rootCmd.AddCommand(sanitizeCmd, filterCmd, inspectCmd)
}

func validateFlags() error {
	switch outputFormat {
	case "human", "json", "yaml":
	default:
		return fmt.Errorf("unsupported output format: %s (supported: human, json, yaml)", outputFormat)
	}

	if alertSlack != "" && !strings.HasPrefix(alertSlack, slackWebhookPrefix) {
		return fmt.Errorf("invalid Slack webhook URL: must start with %s", slackWebhookPrefix)
	}

	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %s (supported: debug, info, warn, error)", logLevel)
	}

	switch logFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %s (supported: text, json)", logFormat)
	}

	return nil
}

func runSanitize(args []string, in io.Reader, out io.Writer) error {
	if len(args) > 0 {
		for _, arg := range args {
			if _, err := fmt.Fprintln(out, redact.RTMPURL(arg)); err != nil {
				return err
			}
		}
		return nil
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if _, err := fmt.Fprintln(out, redact.RTMPURL(scanner.Text())); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

// runFilter copies in to out line by line, preserving line endings.
func runFilter(in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			if _, werr := io.WriteString(out, redact.Text(line)); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
	}
}

func filterFile(path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return runFilter(f, out)
}

func runInspect(ctx context.Context, out io.Writer) error {
	fetcher, err := internal.NewFetcherFromConfig(kubeconfig)
	if err != nil {
		return fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	return inspect(ctx, internal.NewAnalyzer(fetcher), out)
}

func inspect(ctx context.Context, analyzer *internal.Analyzer, out io.Writer) error {
	findings, totalPods, err := analyzer.AnalyzeStreamKeyExposure(ctx, namespace, selector)
	if err != nil {
		return fmt.Errorf("failed to analyze stream key exposure: %w", err)
	}

	reporter := internal.NewReporter(out, internal.OutputFormat(outputFormat))
	if err := reporter.GenerateReport(ctx, findings, clusterName, totalPods); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if alertSlack != "" && len(findings) > 0 {
		if err := reporter.SendSlackNotification(ctx, alertSlack, findings, clusterName); err != nil {
			return err
		}
	}

	logrus.WithField("findings", len(findings)).Debug("Inspection finished")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", redact.Text(err.Error()))
		os.Exit(1)
	}
}
