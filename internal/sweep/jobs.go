package sweep

import (
	"path/filepath"

	"dielsweep/internal/dispatch"
)

// BuildTasks wraps every working directory into a task: the shared command,
// the forward files (extra files plus the generated input) and the backward
// files (the dipole output plus the execution log). The file lists are
// freshly constructed on every call; nothing is aliased between calls.
func BuildTasks(command string, workPaths []string, extraForwardFiles []string) []dispatch.Task {
	forward := make([]string, 0, len(extraForwardFiles)+1)
	for _, f := range extraForwardFiles {
		forward = append(forward, filepath.Base(f))
	}
	forward = append(forward, InputFileName)
	backward := []string{MomentsFileName, LogFileName}

	tasks := make([]dispatch.Task, 0, len(workPaths))
	for _, workPath := range workPaths {
		tasks = append(tasks, dispatch.Task{
			Command:       command,
			WorkPath:      workPath,
			ForwardFiles:  forward,
			BackwardFiles: backward,
			Outlog:        LogFileName,
		})
	}
	return tasks
}
