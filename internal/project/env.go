package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment overrides recognised by keystone.
const (
	EnvJobs       = "KEYSTONE_JOBS"
	EnvTraceLevel = "KEYSTONE_TRACE_LEVEL"
)

// Env carries overrides from the process environment and root/.env.
// Variables already set in the process win over the file.
type Env struct {
	Jobs       int // 0 when unset
	TraceLevel string
}

func LoadEnv(root string) (Env, error) {
	path := filepath.Join(root, ".env")
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Env{}, fmt.Errorf("failed to load %s: %w", path, err)
	}
	env := Env{TraceLevel: os.Getenv(EnvTraceLevel)}
	if v := os.Getenv(EnvJobs); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Env{}, fmt.Errorf("%s must be a non-negative integer, got %q", EnvJobs, v)
		}
		env.Jobs = n
	}
	return env, nil
}
