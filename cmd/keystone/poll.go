package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"keystone/internal/fsys"
	"keystone/internal/project"
)

type fileState struct {
	mod    time.Time
	size   int64
	digest project.Digest
}

// poller detects changed project files between scans. A file counts as
// changed only when its content digest differs; touching it is not enough.
type poller struct {
	root  string
	files fsys.FS
	stat  func(name string) (fs.FileInfo, error)
	state map[string]fileState
}

func newPoller(root string, files fsys.FS) *poller {
	return &poller{root: root, files: files, stat: os.Stat}
}

// scan returns the sorted list of files added, modified or removed since the
// previous scan. The first scan only records a baseline.
func (p *poller) scan() ([]string, error) {
	list, err := p.files.ListFiles("")
	if err != nil {
		return nil, err
	}
	first := p.state == nil
	next := make(map[string]fileState, len(list))
	var changed []string
	for _, name := range list {
		info, err := p.stat(filepath.Join(p.root, filepath.FromSlash(name)))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue // удалён между ListFiles и Stat
			}
			return nil, err
		}
		prev, seen := p.state[name]
		if seen && prev.mod.Equal(info.ModTime()) && prev.size == info.Size() {
			next[name] = prev
			continue
		}
		content, err := p.files.ReadFile(name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		st := fileState{mod: info.ModTime(), size: info.Size(), digest: project.DigestOf(content)}
		next[name] = st
		if !first && (!seen || prev.digest != st.digest) {
			changed = append(changed, name)
		}
	}
	for name := range p.state {
		if _, ok := next[name]; !ok {
			changed = append(changed, name)
		}
	}
	p.state = next
	slices.Sort(changed)
	return changed, nil
}
