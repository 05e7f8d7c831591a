package dispatch

import (
	"errors"
	"fmt"
	"strings"
)

// Task describes one unit of work executed in its own directory under the
// submission work base. Tasks are immutable after creation.
type Task struct {
	Command       string
	WorkPath      string // relative to the submission work base
	ForwardFiles  []string
	BackwardFiles []string
	Outlog        string
}

// Validate checks the structural integrity of the task.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Command) == "" {
		return errors.New("dispatch: task command must not be empty")
	}
	if t.WorkPath == "" {
		return errors.New("dispatch: task work path must not be empty")
	}
	if strings.HasPrefix(t.WorkPath, "/") || strings.Contains(t.WorkPath, "..") {
		return fmt.Errorf("dispatch: task work path %q must be relative to the work base", t.WorkPath)
	}
	if t.Outlog == "" {
		return errors.New("dispatch: task outlog must not be empty")
	}
	return nil
}
