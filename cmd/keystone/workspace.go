package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"keystone/internal/decl"
	"keystone/internal/driver"
	"keystone/internal/generate"
	"keystone/internal/project"
)

// workspace is a loaded project ready for checking.
type workspace struct {
	manifest *project.Manifest
	env      project.Env
	engine   *driver.Engine
	reg      *generate.Registry
	cleanup  func()
}

// openWorkspace loads the manifest above args[0] (or the working directory),
// applies .env and flag overrides, sets up tracing and wires the engine.
// The caller must invoke ws.cleanup.
func openWorkspace(cmd *cobra.Command, args []string, opts driver.Options) (*workspace, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	m, err := project.LoadManifest(abs)
	if err != nil {
		if errors.Is(err, project.ErrNoManifest) {
			return nil, fmt.Errorf("no %s found in %s or any parent directory (run `keystone init`)", project.ManifestName, abs)
		}
		return nil, err
	}
	env, err := project.LoadEnv(m.Root)
	if err != nil {
		return nil, err
	}
	cleanup, err := setupTracing(cmd, env)
	if err != nil {
		return nil, err
	}

	if opts.Jobs <= 0 {
		opts.Jobs = env.Jobs
	}
	if opts.MaxDiagnostics <= 0 {
		maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
		opts.MaxDiagnostics = maxDiagnostics
	}
	engine, err := driver.Open(m, opts)
	if err != nil {
		cleanup()
		return nil, err
	}
	return &workspace{
		manifest: m,
		env:      env,
		engine:   engine,
		reg:      generate.NewRegistry(),
		cleanup:  cleanup,
	}, nil
}

// contracts loads the definition file and generates contracts from it.
// Definition errors are part of the result, not of err.
func (ws *workspace) contracts(cmd *cobra.Command) (generate.Result, error) {
	def, err := decl.LoadFile(ws.reg, ws.manifest.Root, ws.manifest.Config.Project.Definition)
	if err != nil {
		return generate.Result{}, err
	}
	return ws.engine.GenerateContracts(cmd.Context(), ws.reg, def)
}
