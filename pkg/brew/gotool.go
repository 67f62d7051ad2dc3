package brew

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// GoTool resolves and installs brewery's own releases through the Go toolchain.
type GoTool struct {
	runner Runner
	binary string
	module string
}

// NewGoTool creates a GoTool for module using the given go binary.
func NewGoTool(runner Runner, binary, module string) *GoTool {
	if binary == "" {
		binary = "go"
	}
	return &GoTool{runner: runner, binary: binary, module: module}
}

// Module returns the module path being tracked.
func (g *GoTool) Module() string {
	return g.module
}

// Latest asks the module proxy for the newest published version.
func (g *GoTool) Latest(ctx context.Context) (string, error) {
	out, err := g.runner.Execute(ctx, g.binary, "list", "-m", "-json", g.module+"@latest")
	if err != nil {
		return "", err
	}

	var info struct {
		Version string `json:"Version"`
	}
	if err := json.Unmarshal([]byte(out.Stdout), &info); err != nil {
		return "", fmt.Errorf("failed to parse module info for %s: %w", g.module, err)
	}
	if info.Version == "" {
		return "", fmt.Errorf("%w: no published version of %s", ErrNotFound, g.module)
	}
	return info.Version, nil
}

// SelfUpdate installs the latest brewery binary.
func (g *GoTool) SelfUpdate(ctx context.Context) (Output, error) {
	return g.runner.Execute(ctx, g.binary, "install", g.module+"/cmd@latest")
}

// NewerThan reports whether latest is a different release than current.
// Development builds never report an update.
func NewerThan(latest, current string) bool {
	latest = strings.TrimPrefix(latest, "v")
	current = strings.TrimPrefix(current, "v")
	if latest == "" || current == "" || strings.HasSuffix(current, "-dev") {
		return false
	}
	return latest != current
}
