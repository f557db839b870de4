package project

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// GoModulePath reads the module path from root/go.mod.
func GoModulePath(root string) (string, error) {
	path := filepath.Join(root, "go.mod")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	f, err := modfile.ParseLax(path, data, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	if f.Module == nil {
		return "", fmt.Errorf("%s: missing module directive", path)
	}
	return f.Module.Mod.Path, nil
}
