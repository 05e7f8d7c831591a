package config

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"dielsweep/internal/ctxlog"
	"dielsweep/internal/dispatch"
)

// Load parses the workflow file at path and returns the validated model.
// Duplicate singleton blocks are fatal.
func Load(ctx context.Context, path string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: parse %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("config: decode %s: %w", path, diags)
	}
	if len(root.Sweeps) != 1 {
		return nil, fmt.Errorf("config: exactly one sweep block is required, found %d", len(root.Sweeps))
	}
	if len(root.Machines) > 1 {
		return nil, fmt.Errorf("config: at most one machine block is allowed, found %d", len(root.Machines))
	}
	if len(root.Resources) > 1 {
		return nil, fmt.Errorf("config: at most one resources block is allowed, found %d", len(root.Resources))
	}

	sw := root.Sweeps[0]
	polarisation, err := vec3(sw.Polarisation, "polarisation")
	if err != nil {
		return nil, err
	}
	dFilter, err := vec3(sw.DFilter, "d_filter")
	if err != nil {
		return nil, err
	}

	machine := dispatch.Machine{Kind: dispatch.KindLocal}
	if len(root.Machines) == 1 {
		mb := root.Machines[0]
		machine = dispatch.Machine{
			Kind:         dispatch.Kind(mb.Kind),
			ScratchRoot:  mb.ScratchRoot,
			BaseURL:      mb.URL,
			PollInterval: time.Duration(mb.PollSeconds) * time.Second,
		}
	}

	var resources dispatch.Resources
	if len(root.Resources) == 1 {
		rb := root.Resources[0]
		resources = dispatch.Resources{
			Concurrency:  rb.Concurrency,
			Nodes:        rb.Nodes,
			TasksPerNode: rb.TasksPerNode,
			Queue:        rb.Queue,
		}
		if rb.Custom != nil {
			custom, err := decodeCustom(rb.Custom.Body)
			if err != nil {
				return nil, err
			}
			resources.Custom = custom
		}
	}

	model := &Model{
		Command: root.Command,
		Sweep: Sweep{
			Template:          sw.Template,
			OutputDir:         sw.OutputDir,
			EpsType:           sw.EpsType,
			Intensities:       sw.Intensities,
			Polarisation:      polarisation,
			DFilter:           dFilter,
			DisplacementField: sw.DisplacementField,
			RestartWFN:        sw.RestartWFN,
			ExtraFiles:        sw.ExtraFiles,
			CommonFiles:       sw.CommonFiles,
		},
		Machine:   machine,
		Resources: resources,
	}
	if err := model.validate(); err != nil {
		return nil, err
	}

	logger.Debug("Configuration loaded.",
		"path", path, "points", len(model.Sweep.Intensities), "machine", string(model.Machine.Kind))
	return model, nil
}

// decodeCustom converts the free-form custom block into string pairs for the
// execution backend.
func decodeCustom(body hcl.Body) (map[string]string, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: custom block: %w", diags)
	}
	if len(attrs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("config: custom attribute %s: %w", name, diags)
		}
		strVal, err := convert.Convert(val, cty.String)
		if err != nil {
			return nil, fmt.Errorf("config: custom attribute %s: %w", name, err)
		}
		out[name] = strVal.AsString()
	}
	return out, nil
}

func vec3(v []float64, name string) ([3]float64, error) {
	if len(v) != 3 {
		return [3]float64{}, fmt.Errorf("config: %s must have exactly 3 components, got %d", name, len(v))
	}
	return [3]float64{v[0], v[1], v[2]}, nil
}
