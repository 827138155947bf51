package internal

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/syossan27/streamkey-redactor/pkg/redact"
	"github.com/syossan27/streamkey-redactor/pkg/types"
)

// FetcherInterface defines the interface for fetching Kubernetes resources
type FetcherInterface interface {
	FetchPods(ctx context.Context, namespace, selector string) ([]types.PodInfo, error)
}

// Analyzer inspects pod specs for RTMP URLs that embed stream keys or other
// credentials in plain text. It uses a FetcherInterface to retrieve pods and
// reports only redacted values.
type Analyzer struct {
	fetcher FetcherInterface
}

// NewAnalyzer creates a new Analyzer instance with the provided FetcherInterface.
//
// Parameters:
//   - fetcher: A FetcherInterface instance for retrieving pods
//
// Returns:
//   - *Analyzer: A new Analyzer instance
func NewAnalyzer(fetcher FetcherInterface) *Analyzer {
	return &Analyzer{
		fetcher: fetcher,
	}
}

// AnalyzeStreamKeyExposure scans every container (including init containers)
// of the selected pods for env values, command entries and args that carry
// redactable RTMP credential material.
//
// Parameters:
//   - ctx: Context for the operation, used for cancellation and timeout
//   - namespace: Target namespace to inspect. If empty, inspects cluster-wide
//   - selector: Label selector restricting the pods inspected. May be empty
//
// Returns:
//   - []types.Finding: One finding per exposed value, carrying the redacted rendering only
//   - int: Number of pods scanned
//   - error: An error if fetching pods fails
func (a *Analyzer) AnalyzeStreamKeyExposure(ctx context.Context, namespace, selector string) ([]types.Finding, int, error) {
	logrus.WithFields(logrus.Fields{
		"namespace": namespace,
		"selector":  selector,
	}).Info("Starting stream key exposure analysis")

	pods, err := a.fetcher.FetchPods(ctx, namespace, selector)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch pods for analysis")
		return nil, 0, fmt.Errorf("failed to fetch pods: %w", err)
	}

	var findings []types.Finding
	for _, pod := range pods {
		podFindings := a.analyzeSinglePod(pod)
		if len(podFindings) > 0 {
			logrus.WithFields(logrus.Fields{
				"pod_name":      pod.Name,
				"pod_namespace": pod.Namespace,
				"findings":      len(podFindings),
			}).Warn("Pod exposes stream credentials in its spec")
		} else {
			logrus.WithFields(logrus.Fields{
				"pod_name":      pod.Name,
				"pod_namespace": pod.Namespace,
			}).Debug("Pod has no exposed stream credentials")
		}
		findings = append(findings, podFindings...)
	}

	logrus.WithFields(logrus.Fields{
		"total_pods":     len(pods),
		"total_findings": len(findings),
	}).Info("Stream key exposure analysis completed")

	return findings, len(pods), nil
}

// analyzeSinglePod returns a finding for every value in the pod's container
// specs that redact.Text would change.
func (a *Analyzer) analyzeSinglePod(pod types.PodInfo) []types.Finding {
	var findings []types.Finding

	add := func(c types.ContainerInfo, source types.SourceKind, key, value string) {
		redacted := redact.Text(value)
		if redacted == value {
			return
		}
		findings = append(findings, types.Finding{
			Pod:        pod.Name,
			Namespace:  pod.Namespace,
			Container:  c.Name,
			Init:       c.Init,
			Source:     source,
			Key:        key,
			Value:      redacted,
			Suggestion: suggestionFor(source),
		})
	}

	for _, c := range pod.Containers {
		for _, env := range c.Env {
			add(c, types.SourceEnv, env.Name, env.Value)
		}
		for i, cmd := range c.Command {
			add(c, types.SourceCommand, fmt.Sprintf("command[%d]", i), cmd)
		}
		for i, arg := range c.Args {
			add(c, types.SourceArg, fmt.Sprintf("args[%d]", i), arg)
		}
	}

	return findings
}

func suggestionFor(source types.SourceKind) string {
	if source == types.SourceEnv {
		return "Move the stream URL into a Secret and reference it with valueFrom.secretKeyRef"
	}
	return "Pass the stream URL through an environment variable sourced from a Secret instead of the container command line"
}
