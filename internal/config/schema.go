package config

import "github.com/hashicorp/hcl/v2"

// HCL-facing structs. They mirror the file layout only; the validated model
// lives in model.go.

type sweepBlock struct {
	Template          string    `hcl:"template"`
	OutputDir         string    `hcl:"output_dir"`
	EpsType           string    `hcl:"eps_type"`
	Intensities       []float64 `hcl:"intensities"`
	Polarisation      []float64 `hcl:"polarisation"`
	DFilter           []float64 `hcl:"d_filter"`
	DisplacementField bool      `hcl:"displacement_field,optional"`
	RestartWFN        string    `hcl:"restart_wfn,optional"`
	ExtraFiles        []string  `hcl:"extra_files,optional"`
	CommonFiles       []string  `hcl:"common_files,optional"`
}

type machineBlock struct {
	Kind        string `hcl:"kind,label"`
	ScratchRoot string `hcl:"scratch_root,optional"`
	URL         string `hcl:"url,optional"`
	PollSeconds int    `hcl:"poll_seconds,optional"`
}

type customBlock struct {
	Body hcl.Body `hcl:",remain"`
}

type resourcesBlock struct {
	Concurrency  int          `hcl:"concurrency,optional"`
	Nodes        int          `hcl:"nodes,optional"`
	TasksPerNode int          `hcl:"tasks_per_node,optional"`
	Queue        string       `hcl:"queue,optional"`
	Custom       *customBlock `hcl:"custom,block"`
}

type fileRoot struct {
	Command   string            `hcl:"command"`
	Sweeps    []*sweepBlock     `hcl:"sweep,block"`
	Machines  []*machineBlock   `hcl:"machine,block"`
	Resources []*resourcesBlock `hcl:"resources,block"`
	Remain    hcl.Body          `hcl:",remain"`
}
