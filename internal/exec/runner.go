package exec

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Result holds command execution output
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes the model scripts with context support
type Runner struct {
	PythonPath string
	ScriptsDir string
}

// NewRunner creates a new command runner. An empty pythonPath prefers the
// virtual environment inside scriptsDir and falls back to python3.
func NewRunner(pythonPath, scriptsDir string) *Runner {
	if pythonPath == "" {
		venvPython := filepath.Join(scriptsDir, ".venv", "bin", "python")
		if _, err := os.Stat(venvPython); err == nil {
			pythonPath = venvPython
		} else {
			pythonPath = "python3"
		}
	}
	return &Runner{
		PythonPath: pythonPath,
		ScriptsDir: scriptsDir,
	}
}

// RunScript executes a Python script from ScriptsDir with arguments
func (r *Runner) RunScript(ctx context.Context, script string, args ...string) (*Result, error) {
	scriptPath := filepath.Join(r.ScriptsDir, script)
	if _, err := os.Stat(scriptPath); err != nil {
		return &Result{}, fmt.Errorf("script %s: %w", script, err)
	}
	fullArgs := append([]string{scriptPath}, args...)
	return r.execute(ctx, r.PythonPath, fullArgs...)
}

// execute runs a command and captures output
func (r *Runner) execute(ctx context.Context, name string, args ...string) (*Result, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(), fmt.Sprintf("PYTHONPATH=%s", r.ScriptsDir))

	err := cmd.Run()

	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
	}

	if err != nil {
		return result, fmt.Errorf("command failed: %w", err)
	}

	return result, nil
}

// CheckPythonDependency verifies a Python package is importable
func (r *Runner) CheckPythonDependency(ctx context.Context, packageName string) error {
	result, err := r.execute(ctx, r.PythonPath, "-c", fmt.Sprintf("import %s", packageName))
	if err != nil {
		return fmt.Errorf("%s not installed: %s", packageName, result.Stderr)
	}
	return nil
}
