package dispatch

import (
	"fmt"
	"time"
)

// Kind selects the execution backend of a machine.
type Kind string

const (
	// KindLocal runs tasks on the invoking host with a worker pool.
	KindLocal Kind = "local"
	// KindRemote submits tasks to an HTTP batch agent.
	KindRemote Kind = "remote"
)

// Machine describes where and how a submission executes.
type Machine struct {
	Kind Kind

	// ScratchRoot, when set on a local machine, stages each task into a
	// scratch directory, runs it there, and copies backward files home.
	ScratchRoot string

	// BaseURL is the remote agent endpoint, e.g. "https://agent.example.org".
	BaseURL string
	// PollInterval is how often the remote submission state is polled.
	// Zero means the default of ten seconds.
	PollInterval time.Duration
}

// Validate checks machine settings against the selected kind.
func (m Machine) Validate() error {
	switch m.Kind {
	case KindLocal:
		if m.BaseURL != "" {
			return fmt.Errorf("dispatch: machine kind %q does not take a base URL", m.Kind)
		}
	case KindRemote:
		if m.BaseURL == "" {
			return fmt.Errorf("dispatch: machine kind %q requires a base URL", m.Kind)
		}
	default:
		return fmt.Errorf("dispatch: unknown machine kind %q", m.Kind)
	}
	return nil
}

// Resources describes the execution resources requested for a submission.
// Nodes, TasksPerNode and Queue are forwarded to the backend as-is; only
// Concurrency is interpreted by the local worker pool.
type Resources struct {
	Concurrency  int
	Nodes        int
	TasksPerNode int
	Queue        string
	// Custom carries backend-specific settings straight from the config file.
	Custom map[string]string
}

func (r Resources) withDefaults() Resources {
	if r.Concurrency < 1 {
		r.Concurrency = 1
	}
	if r.Nodes < 1 {
		r.Nodes = 1
	}
	if r.TasksPerNode < 1 {
		r.TasksPerNode = 1
	}
	return r
}
