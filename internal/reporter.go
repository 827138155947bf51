package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/syossan27/streamkey-redactor/pkg/redact"
	"github.com/syossan27/streamkey-redactor/pkg/types"
	"gopkg.in/yaml.v3"
)

// OutputFormat represents the different output formats supported for generating reports.
type OutputFormat string

// Supported output formats for inspection reports.
const (
	// OutputFormatHuman provides human-readable output
	OutputFormatHuman OutputFormat = "human"
	// OutputFormatJSON provides structured JSON output for programmatic consumption
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML provides structured YAML output for configuration and automation
	OutputFormatYAML OutputFormat = "yaml"
)

const noFindingsMessage = "No exposed stream keys found in the specified scope."

// Reporter renders inspection findings to a writer and delivers alerts to
// Slack. Findings are expected to carry redacted values only.
type Reporter struct {
	writer     io.Writer
	format     OutputFormat
	httpClient *http.Client
}

// NewReporter creates a new Reporter instance with the specified output writer and format.
//
// Parameters:
//   - writer: The destination for report output (e.g., os.Stdout, file handle)
//   - format: The output format to use (human, json, or yaml)
//
// Returns:
//   - *Reporter: A new Reporter instance configured with the specified writer and format
func NewReporter(writer io.Writer, format OutputFormat) *Reporter {
	return &Reporter{
		writer:     writer,
		format:     format,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// GenerateReport writes the findings in the configured format.
//
// Parameters:
//   - ctx: Context for the operation, used for cancellation and timeout
//   - findings: Findings produced by the Analyzer
//   - clusterName: Name of the inspected cluster, included in structured output
//   - totalPods: Number of pods that were scanned
//
// Returns:
//   - error: An error if encoding or writing fails, or the format is unknown
func (r *Reporter) GenerateReport(ctx context.Context, findings []types.Finding, clusterName string, totalPods int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(findings) == 0 {
		_, err := fmt.Fprintln(r.writer, noFindingsMessage)
		return err
	}

	report := buildInspectionReport(findings, clusterName, totalPods)

	switch r.format {
	case OutputFormatJSON:
		encoder := json.NewEncoder(r.writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("failed to encode JSON report: %w", err)
		}
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(r.writer)
		defer encoder.Close()
		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("failed to encode YAML report: %w", err)
		}
	case OutputFormatHuman:
		return r.writeHuman(report)
	default:
		return fmt.Errorf("unsupported output format: %s", r.format)
	}

	return nil
}

func (r *Reporter) writeHuman(report types.InspectionReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d exposed stream key(s) across %d pod(s):\n\n", report.TotalFindings, report.TotalPods)
	for _, f := range report.Findings {
		fmt.Fprintf(&b, "[✗] Pod: %s/%s %s=%s %s=%s\n", f.Namespace, f.Pod, containerLabel(f), f.Container, f.Source, f.Key)
		fmt.Fprintf(&b, "→ Value: %s\n", f.Value)
		fmt.Fprintf(&b, "→ Suggested: %s\n\n", f.Suggestion)
	}
	_, err := io.WriteString(r.writer, b.String())
	return err
}

func containerLabel(f types.Finding) string {
	if f.Init {
		return "init-container"
	}
	return "container"
}

func buildInspectionReport(findings []types.Finding, clusterName string, totalPods int) types.InspectionReport {
	return types.InspectionReport{
		Timestamp:     time.Now().UTC(),
		ClusterName:   clusterName,
		TotalPods:     totalPods,
		TotalFindings: len(findings),
		Findings:      findings,
		Summary:       summarize(findings, totalPods),
	}
}

func summarize(findings []types.Finding, totalPods int) string {
	pods := make(map[string]struct{})
	for _, f := range findings {
		pods[f.Namespace+"/"+f.Pod] = struct{}{}
	}
	return fmt.Sprintf("%d of %d pod(s) expose %d stream credential value(s)", len(pods), totalPods, len(findings))
}

type slackMessage struct {
	Text string `json:"text"`
}

// SendSlackNotification posts a summary of the findings to a Slack incoming
// webhook. The webhook URL itself is only ever logged redacted.
//
// Parameters:
//   - ctx: Context for the operation, used for cancellation and timeout
//   - webhookURL: The Slack webhook URL to send notifications to
//   - findings: Redacted findings to summarise
//   - clusterName: Name of the inspected cluster
//
// Returns:
//   - error: An error if the request cannot be sent or Slack rejects it
func (r *Reporter) SendSlackNotification(ctx context.Context, webhookURL string, findings []types.Finding, clusterName string) error {
	logger := logrus.WithField("webhook", redact.WebhookURL(webhookURL))

	var b strings.Builder
	fmt.Fprintf(&b, ":warning: %d exposed stream key(s) found in cluster %q\n", len(findings), clusterName)
	for _, f := range findings {
		fmt.Fprintf(&b, "• %s/%s (%s) %s=%s: %s\n", f.Namespace, f.Pod, f.Container, f.Source, f.Key, f.Value)
	}

	body, err := json.Marshal(slackMessage{Text: b.String()})
	if err != nil {
		return fmt.Errorf("failed to encode Slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create Slack request: %w", redactURLError(err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		err = redactURLError(err)
		logger.WithError(err).Error("Failed to send Slack notification")
		return fmt.Errorf("failed to send Slack notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.WithField("status_code", resp.StatusCode).Error("Slack rejected notification")
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}

	logger.WithField("findings", len(findings)).Info("Slack notification sent")
	return nil
}

// redactURLError masks the webhook secret that net/http embeds in its errors.
func redactURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = redact.WebhookURL(urlErr.URL)
	}
	return err
}
