package driver

import (
	"fmt"
	"os"

	"keystone/internal/check"
	"keystone/internal/fsys"
	"keystone/internal/imports"
	"keystone/internal/project"
)

// Options override manifest settings; zero values keep the manifest's.
type Options struct {
	Jobs           int
	MaxDiagnostics int
	DiskCache      bool
	Observer       Observer
}

// Open wires an engine for the project described by m.
func Open(m *project.Manifest, opts Options) (*Engine, error) {
	cfg := m.Config
	f, err := fsys.New(os.DirFS(m.Root), cfg.Check.Exclude...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Path, err)
	}

	var disk *imports.DiskCache
	if opts.DiskCache || cfg.Cache.Disk {
		disk, err = imports.OpenDiskCache("keystone")
		if err != nil {
			return nil, err
		}
	}
	ts := imports.NewTreeSitter(f, disk)
	resolver := imports.NewResolver(f, cfg.Check.Extensions, cfg.Resolve.Paths, cfg.Resolve.Module)
	idx := imports.NewIndex(ts, ts, resolver)

	deny, err := check.LoadDenylist(cfg.Project.Language, cfg.Purity.Extra, cfg.Purity.Allow)
	if err != nil {
		return nil, err
	}

	jobs := cfg.Check.Jobs
	if opts.Jobs > 0 {
		jobs = opts.Jobs
	}
	maxDiags := cfg.Check.MaxDiagnostics
	if opts.MaxDiagnostics > 0 {
		maxDiags = opts.MaxDiagnostics
	}
	return &Engine{
		Env: &check.Env{
			FS:         f,
			Imports:    idx,
			Decls:      idx,
			Denylist:   deny,
			Extensions: cfg.Check.Extensions,
		},
		Index:          idx,
		Jobs:           jobs,
		MaxDiagnostics: maxDiags,
		Observer:       opts.Observer,
	}, nil
}
