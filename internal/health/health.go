// Package health reports on the local setup: runtime, config and log files,
// and whether the aggregation service answers.
package health

import "time"

const defaultProbeTimeout = 5 * time.Second

// Options selects what Collect inspects.
type Options struct {
	ConfigDir  string
	ConfigPath string
	LogFile    string

	ServiceURL   string
	APIKey       string
	Probe        bool // contact the service
	ProbeTimeout time.Duration
}

func (o Options) normalize() Options {
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = defaultProbeTimeout
	}
	return o
}

// Snapshot is the health report.
type Snapshot struct {
	Status     string       `json:"status"`
	Goroutines int          `json:"goroutines"`
	Memory     MemoryInfo   `json:"memory"`
	Runtime    RuntimeInfo  `json:"runtime"`
	Timestamp  string       `json:"timestamp"`
	ConfigDir  string       `json:"configDir,omitempty"`
	Config     *FileInfo    `json:"config,omitempty"`
	Log        *FileInfo    `json:"log,omitempty"`
	Service    *ServiceInfo `json:"service,omitempty"`
}

type MemoryInfo struct {
	AllocMB      float64 `json:"allocMB"`
	TotalAllocMB float64 `json:"totalAllocMB"`
	SysMB        float64 `json:"sysMB"`
	NumGC        uint32  `json:"numGC"`
}

type RuntimeInfo struct {
	Version string `json:"version"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
	CPUs    int    `json:"cpus"`
}

// FileInfo describes a file on disk. ParseError is set when the file
// exists but cannot be read or decoded.
type FileInfo struct {
	Path          string `json:"path"`
	Exists        bool   `json:"exists"`
	FileSizeBytes int64  `json:"fileSizeBytes,omitempty"`
	UpdatedAt     string `json:"updatedAt,omitempty"`
	ParseError    string `json:"parseError,omitempty"`
}

// ServiceInfo is the result of probing the service URL.
type ServiceInfo struct {
	URL        string `json:"url"`
	Probed     bool   `json:"probed"`
	Reachable  bool   `json:"reachable"`
	StatusCode int    `json:"statusCode,omitempty"`
	LatencyMs  int64  `json:"latencyMs,omitempty"`
	Error      string `json:"error,omitempty"`
}
