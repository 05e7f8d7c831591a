package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTask(t *testing.T, workBase, workPath string) {
	t.Helper()
	dir := filepath.Join(workBase, workPath)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "input.inp"), []byte("INTENSITY 0.001\n"), 0o644))
}

func localTask(workPath, command string) Task {
	return Task{
		Command:       command,
		WorkPath:      workPath,
		ForwardFiles:  []string{"input.inp"},
		BackwardFiles: []string{"moments.dat", "cp2k.log"},
		Outlog:        "cp2k.log",
	}
}

func TestRunLocal(t *testing.T) {
	workBase := t.TempDir()
	writeTask(t, workBase, "task_0")
	writeTask(t, workBase, "task_1")

	command := "cat input.inp > moments.dat && echo done"
	tasks := []Task{localTask("task_0", command), localTask("task_1", command)}

	sub, err := NewSubmission(workBase, Machine{Kind: KindLocal}, Resources{Concurrency: 2}, tasks, nil)
	require.NoError(t, err)
	require.NoError(t, sub.Run(context.Background(), false))

	for _, wp := range []string{"task_0", "task_1"} {
		moments, err := os.ReadFile(filepath.Join(workBase, wp, "moments.dat"))
		require.NoError(t, err)
		assert.Equal(t, "INTENSITY 0.001\n", string(moments))

		log, err := os.ReadFile(filepath.Join(workBase, wp, "cp2k.log"))
		require.NoError(t, err)
		assert.Contains(t, string(log), "done")
	}
}

func TestRunDry(t *testing.T) {
	workBase := t.TempDir()
	writeTask(t, workBase, "task_0")

	sub, err := NewSubmission(workBase, Machine{Kind: KindLocal}, Resources{}, []Task{localTask("task_0", "exit 1")}, nil)
	require.NoError(t, err)
	require.NoError(t, sub.Run(context.Background(), true))

	assert.NoFileExists(t, filepath.Join(workBase, "task_0", "cp2k.log"))
}

func TestRunLocalCommandFails(t *testing.T) {
	workBase := t.TempDir()
	writeTask(t, workBase, "task_0")

	sub, err := NewSubmission(workBase, Machine{Kind: KindLocal}, Resources{}, []Task{localTask("task_0", "exit 3")}, nil)
	require.NoError(t, err)

	err = sub.Run(context.Background(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task_0")
}

func TestRunLocalMissingBackwardFile(t *testing.T) {
	workBase := t.TempDir()
	writeTask(t, workBase, "task_0")

	// Command succeeds but never produces moments.dat.
	sub, err := NewSubmission(workBase, Machine{Kind: KindLocal}, Resources{}, []Task{localTask("task_0", "true")}, nil)
	require.NoError(t, err)

	err = sub.Run(context.Background(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "moments.dat")
}

func TestRunLocalMissingForwardFile(t *testing.T) {
	workBase := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(workBase, "task_0"), 0o755))

	sub, err := NewSubmission(workBase, Machine{Kind: KindLocal}, Resources{}, []Task{localTask("task_0", "true")}, nil)
	require.NoError(t, err)

	err = sub.Run(context.Background(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input.inp")
	assert.NoFileExists(t, filepath.Join(workBase, "task_0", "cp2k.log"))
}

func TestRunLocalScratch(t *testing.T) {
	workBase := t.TempDir()
	writeTask(t, workBase, "task_0")
	require.NoError(t, os.WriteFile(filepath.Join(workBase, "restart.wfn"), []byte("wavefunction\n"), 0o644))

	machine := Machine{Kind: KindLocal, ScratchRoot: t.TempDir()}
	// The staged common file sits one level above the scratch run directory.
	task := localTask("task_0", "cat ../restart.wfn > moments.dat")

	sub, err := NewSubmission(workBase, machine, Resources{}, []Task{task}, []string{"restart.wfn"})
	require.NoError(t, err)
	require.NoError(t, sub.Run(context.Background(), false))

	moments, err := os.ReadFile(filepath.Join(workBase, "task_0", "moments.dat"))
	require.NoError(t, err)
	assert.Equal(t, "wavefunction\n", string(moments))
	assert.FileExists(t, filepath.Join(workBase, "task_0", "cp2k.log"))
}

func TestNewSubmissionValidates(t *testing.T) {
	workBase := t.TempDir()

	_, err := NewSubmission(workBase, Machine{Kind: KindLocal}, Resources{}, nil, nil)
	assert.Error(t, err)

	_, err = NewSubmission(workBase, Machine{Kind: "cloud"}, Resources{}, []Task{localTask("task_0", "true")}, nil)
	assert.Error(t, err)

	_, err = NewSubmission(workBase, Machine{Kind: KindLocal}, Resources{}, []Task{localTask("/abs", "true")}, nil)
	assert.Error(t, err)

	_, err = NewSubmission("", Machine{Kind: KindLocal}, Resources{}, []Task{localTask("task_0", "true")}, nil)
	assert.Error(t, err)
}

func TestMachineValidate(t *testing.T) {
	assert.NoError(t, Machine{Kind: KindLocal}.Validate())
	assert.NoError(t, Machine{Kind: KindRemote, BaseURL: "http://agent"}.Validate())
	assert.Error(t, Machine{Kind: KindRemote}.Validate())
	assert.Error(t, Machine{Kind: KindLocal, BaseURL: "http://agent"}.Validate())
}

func TestResourcesDefaults(t *testing.T) {
	r := Resources{}.withDefaults()
	assert.Equal(t, 1, r.Concurrency)
	assert.Equal(t, 1, r.Nodes)
	assert.Equal(t, 1, r.TasksPerNode)

	r = Resources{Concurrency: 8, Nodes: 2, TasksPerNode: 16}.withDefaults()
	assert.Equal(t, 8, r.Concurrency)
	assert.Equal(t, 2, r.Nodes)
	assert.Equal(t, 16, r.TasksPerNode)
}
