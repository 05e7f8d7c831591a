package dispatch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"

	"dielsweep/internal/ctxlog"
	"dielsweep/internal/fsutil"
)

// runLocal executes the submission on the invoking host with a pool of
// Resources.Concurrency workers. The first failing task cancels the rest.
func (s *Submission) runLocal(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("submission", s.ID)

	if s.Machine.ScratchRoot != "" {
		if err := s.stageCommonToScratch(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := s.Resources.Concurrency
	if workers > len(s.Tasks) {
		workers = len(s.Tasks)
	}
	logger.Debug("Local worker pool starting.", "workers", workers, "tasks", len(s.Tasks))

	bar := progressbar.NewOptions(len(s.Tasks),
		progressbar.OptionSetDescription("tasks"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)
	taskCh := make(chan Task)
	errCh := make(chan error, len(s.Tasks))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for t := range taskCh {
				if ctx.Err() != nil {
					continue
				}
				taskLogger := logger.With("workerID", workerID, "task", t.WorkPath)
				taskLogger.Debug("Worker picked up task.")
				if err := s.runTask(ctx, t); err != nil {
					taskLogger.Error("Task failed.", "error", err)
					errCh <- fmt.Errorf("dispatch: task %s: %w", t.WorkPath, err)
					cancel()
					continue
				}
				taskLogger.Debug("Task finished.")
				_ = bar.Add(1)
			}
		}(i)
	}

	for _, t := range s.Tasks {
		taskCh <- t
	}
	close(taskCh)
	wg.Wait()
	_ = bar.Finish()

	close(errCh)
	for err := range errCh {
		return err
	}
	logger.Debug("Local worker pool finished.")
	return nil
}

// runTask runs one task, in place or in a scratch copy, capturing combined
// stdout/stderr to the outlog and verifying the backward files afterwards.
func (s *Submission) runTask(ctx context.Context, t Task) error {
	home := filepath.Join(s.WorkBase, t.WorkPath)
	runDir := home
	if s.Machine.ScratchRoot != "" {
		runDir = filepath.Join(s.Machine.ScratchRoot, s.ID, t.WorkPath)
		if err := fsutil.CopyTree(home, runDir); err != nil {
			return fmt.Errorf("stage in: %w", err)
		}
	}

	out, err := os.Create(filepath.Join(runDir, t.Outlog))
	if err != nil {
		return fmt.Errorf("create outlog: %w", err)
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", t.Command)
	cmd.Dir = runDir
	cmd.Stdout = out
	cmd.Stderr = out
	runErr := cmd.Run()
	if cerr := out.Close(); runErr == nil {
		runErr = cerr
	}
	if runErr != nil {
		return fmt.Errorf("command %q: %w", t.Command, runErr)
	}

	if runDir != home {
		for _, name := range t.BackwardFiles {
			if err := fsutil.CopyFile(filepath.Join(runDir, name), filepath.Join(home, name)); err != nil {
				return fmt.Errorf("stage out %s: %w", name, err)
			}
		}
	}
	for _, name := range t.BackwardFiles {
		if _, err := os.Stat(filepath.Join(home, name)); err != nil {
			return fmt.Errorf("backward file %s missing after completion: %w", name, err)
		}
	}
	return nil
}

// stageCommonToScratch copies the common files to the scratch submission
// root so that tasks find them one level above their run directory.
func (s *Submission) stageCommonToScratch() error {
	root := filepath.Join(s.Machine.ScratchRoot, s.ID)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("dispatch: create scratch root: %w", err)
	}
	paths := make([]string, 0, len(s.ForwardCommonFiles))
	for _, name := range s.ForwardCommonFiles {
		paths = append(paths, filepath.Join(s.WorkBase, name))
	}
	if err := fsutil.CopyFileList(paths, root); err != nil {
		return fmt.Errorf("dispatch: stage common files: %w", err)
	}
	return nil
}
