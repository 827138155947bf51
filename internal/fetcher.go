package internal

import (
	"context"
	"fmt"

	"github.com/syossan27/streamkey-redactor/pkg/types"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

type Fetcher struct {
	clientset kubernetes.Interface
}

func NewFetcher(clientset kubernetes.Interface) *Fetcher {
	return &Fetcher{
		clientset: clientset,
	}
}

// NewFetcherFromConfig builds a Fetcher from the in-cluster config, falling
// back to kubeconfig (or the default kubeconfig location when empty).
func NewFetcherFromConfig(kubeconfig string) (*Fetcher, error) {
	if kubeconfig == "" {
		kubeconfig = clientcmd.RecommendedHomeFile
	}

	config, err := rest.InClusterConfig()
	if err != nil {
		inClusterErr := err
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create kubernetes config: in-cluster error: %v, fallback error: %w", inClusterErr, err)
		}
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}

	return NewFetcher(clientset), nil
}

// FetchPods lists pods in namespace (all namespaces when empty) matching the
// label selector and returns the parts of their container specs that can
// carry inline stream URLs.
func (f *Fetcher) FetchPods(ctx context.Context, namespace, selector string) ([]types.PodInfo, error) {
	pods, err := f.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: selector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}

	podInfos := make([]types.PodInfo, 0, len(pods.Items))
	for i := range pods.Items {
		podInfos = append(podInfos, parsePodInfo(&pods.Items[i]))
	}

	return podInfos, nil
}

func parsePodInfo(pod *corev1.Pod) types.PodInfo {
	info := types.PodInfo{
		Name:      pod.Name,
		Namespace: pod.Namespace,
	}

	for _, c := range pod.Spec.InitContainers {
		info.Containers = append(info.Containers, parseContainerInfo(c, true))
	}
	for _, c := range pod.Spec.Containers {
		info.Containers = append(info.Containers, parseContainerInfo(c, false))
	}

	return info
}

func parseContainerInfo(c corev1.Container, init bool) types.ContainerInfo {
	info := types.ContainerInfo{
		Name:    c.Name,
		Init:    init,
		Command: c.Command,
		Args:    c.Args,
	}

	for _, env := range c.Env {
		// valueFrom references carry no inline value.
		if env.Value == "" {
			continue
		}
		info.Env = append(info.Env, types.EnvVar{Name: env.Name, Value: env.Value})
	}

	return info
}
