package check

import (
	"fmt"
	"path"

	"keystone/internal/contract"
	"keystone/internal/diag"
	"keystone/internal/fsys"
	"keystone/internal/source"
)

// checkExists reports a missing location at the declaration site.
func checkExists(p *pass) error {
	if p.env.FS == nil {
		return nil
	}
	a := p.c.Args[0]
	if fsys.LocationExists(p.env.FS, a.Location) {
		return nil
	}
	var msg string
	if a.Location.Pattern {
		msg = fmt.Sprintf("%s: no file matches %s", p.name(0), a.Location)
	} else {
		msg = fmt.Sprintf("%s: %s does not exist", p.name(0), a.Location)
	}
	diag.ReportViolation(p.rep, p.c, p.c.Decl, msg).
		WithFix("create-location", fmt.Sprintf("create %s", a.Location)).
		Emit()
	return nil
}

func checkMirrors(p *pass) error {
	if p.env.FS == nil {
		return nil
	}
	primary, secondary := p.c.Args[0], p.c.Args[1]
	if err := mirror(p, primary, secondary); err != nil {
		return err
	}
	if p.c.Options.Bidirectional {
		return mirror(p, secondary, primary)
	}
	return nil
}

// mirror reports each file under from lacking a counterpart under to.
func mirror(p *pass, from, to contract.Arg) error {
	for _, file := range p.files(from.Location) {
		if err := p.ctx.Err(); err != nil {
			return err
		}
		p.touched[file] = struct{}{}
		rel, ok := from.Location.Rel(file)
		if !ok {
			continue
		}
		want := source.CleanPath(path.Join(to.Location.Path, rel))
		if p.env.FS.Exists(want) {
			continue
		}
		msg := fmt.Sprintf("%s has no mirror in %s: expected %s", file, to.Location, want)
		diag.ReportViolation(p.rep, p.c, source.At(file, 1, 0), msg).
			WithFix("create-mirror", fmt.Sprintf("create %s", want)).
			Emit()
	}
	return nil
}
