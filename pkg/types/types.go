package types

import "time"

// EnvVar is a container environment variable with a literal value.
type EnvVar struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

type ContainerInfo struct {
	Name    string
	Init    bool
	Command []string
	Args    []string
	Env     []EnvVar
}

type PodInfo struct {
	Name       string
	Namespace  string
	Containers []ContainerInfo
}

// SourceKind identifies where in a container spec a finding was located.
type SourceKind string

const (
	SourceEnv     SourceKind = "env"
	SourceCommand SourceKind = "command"
	SourceArg     SourceKind = "arg"
)

// Finding describes one container spec value that embeds RTMP credential
// material. Value is always the redacted rendering.
type Finding struct {
	Pod        string     `json:"pod" yaml:"pod"`
	Namespace  string     `json:"namespace" yaml:"namespace"`
	Container  string     `json:"container" yaml:"container"`
	Init       bool       `json:"initContainer,omitempty" yaml:"initContainer,omitempty"`
	Source     SourceKind `json:"source" yaml:"source"`
	Key        string     `json:"key" yaml:"key"`
	Value      string     `json:"value" yaml:"value"`
	Suggestion string     `json:"suggestion" yaml:"suggestion"`
}

type InspectionReport struct {
	Timestamp     time.Time `json:"timestamp" yaml:"timestamp"`
	ClusterName   string    `json:"clusterName" yaml:"clusterName"`
	TotalPods     int       `json:"totalPods" yaml:"totalPods"`
	TotalFindings int       `json:"totalFindings" yaml:"totalFindings"`
	Findings      []Finding `json:"findings" yaml:"findings"`
	Summary       string    `json:"summary" yaml:"summary"`
}
