package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"dielsweep/internal/ctxlog"
)

// Submission is a batch of tasks sharing one work base directory. It is
// consumed once by Run and never mutated afterwards.
type Submission struct {
	ID        string
	WorkBase  string
	Machine   Machine
	Resources Resources
	Tasks     []Task
	// ForwardCommonFiles are file names, relative to the work base, shared
	// by every task (e.g. a restart wavefunction).
	ForwardCommonFiles []string
}

// NewSubmission validates the machine and every task and assembles a
// submission with a fresh ID. Task and file slices are copied.
func NewSubmission(workBase string, machine Machine, resources Resources, tasks []Task, commonFiles []string) (*Submission, error) {
	if workBase == "" {
		return nil, errors.New("dispatch: work base must not be empty")
	}
	if err := machine.Validate(); err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, errors.New("dispatch: submission requires at least one task")
	}
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	return &Submission{
		ID:                 uuid.NewString(),
		WorkBase:           workBase,
		Machine:            machine,
		Resources:          resources.withDefaults(),
		Tasks:              append([]Task(nil), tasks...),
		ForwardCommonFiles: append([]string(nil), commonFiles...),
	}, nil
}

// Run executes every task and returns once all have completed. When dryRun
// is set it short-circuits before any execution. The first task failure
// aborts the submission; there is no retry.
func (s *Submission) Run(ctx context.Context, dryRun bool) error {
	logger := ctxlog.FromContext(ctx).With("submission", s.ID)

	if dryRun {
		logger.Info("Dry run requested, submission not executed.", "tasks", len(s.Tasks))
		return nil
	}
	if err := s.checkForwardFiles(); err != nil {
		return err
	}

	switch s.Machine.Kind {
	case KindLocal:
		return s.runLocal(ctx)
	case KindRemote:
		client, err := newRemoteClient(s.Machine)
		if err != nil {
			return err
		}
		return client.run(ctx, s)
	default:
		return fmt.Errorf("dispatch: unknown machine kind %q", s.Machine.Kind)
	}
}

func (s *Submission) checkForwardFiles() error {
	for _, name := range s.ForwardCommonFiles {
		if _, err := os.Stat(filepath.Join(s.WorkBase, name)); err != nil {
			return fmt.Errorf("dispatch: common file %s: %w", name, err)
		}
	}
	for _, t := range s.Tasks {
		for _, name := range t.ForwardFiles {
			if _, err := os.Stat(filepath.Join(s.WorkBase, t.WorkPath, name)); err != nil {
				return fmt.Errorf("dispatch: forward file %s of task %s: %w", name, t.WorkPath, err)
			}
		}
	}
	return nil
}
