package check

import (
	"fmt"
	"slices"
	"strings"

	"keystone/internal/contract"
	"keystone/internal/diag"
	"keystone/internal/project/dag"
)

// owner maps a path to the deepest listed region that contains it.
func owner(args []contract.Arg, idx dag.Index, path string) (dag.NodeID, bool) {
	best, depth := dag.NodeID(0), -1
	for _, a := range args {
		if !a.Location.Matches(path) {
			continue
		}
		d := 0
		if a.Path != "" {
			d = strings.Count(a.Path, ".") + 1
		}
		if d > depth {
			best, depth = idx.NameToID[a.Path], d
		}
	}
	return best, depth >= 0
}

func checkNoCycles(p *pass) error {
	args := p.c.Args
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.Path
	}
	g := dag.NewGraph(dag.BuildIndex(names))

	var files []string
	for _, a := range args {
		files = append(files, p.sources(a.Location)...)
	}
	slices.Sort(files)
	files = slices.Compact(files)

	for _, file := range files {
		from, ok := owner(args, g.Index, file)
		if !ok {
			continue
		}
		specs, ok, err := p.imports(file)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		for _, s := range specs {
			if s.Resolved == "" {
				continue
			}
			if s.Resolved == file {
				msg := fmt.Sprintf("dependency cycle: %s imports itself", file)
				diag.ReportViolation(p.rep, p.c, s.Ref(file), msg).
					WithFix("remove-import", fmt.Sprintf("remove the import of %q", s.Module)).
					Emit()
				continue
			}
			to, ok := owner(args, g.Index, s.Resolved)
			if !ok || to == from {
				continue
			}
			g.AddEdge(from, to, dag.Witness{At: s.Ref(file), Module: s.Module})
		}
	}

	for _, cyc := range dag.Cycles(g) {
		w, _ := g.Witness(cyc.Back)
		chain := append(g.Index.Names(cyc.Path), g.Index.Name(cyc.Back.To))
		msg := fmt.Sprintf("dependency cycle between %s: %s",
			strings.Join(g.Index.Names(cyc.Nodes), ", "), strings.Join(chain, " -> "))
		b := diag.ReportViolation(p.rep, p.c, w.At, msg)
		for i := 0; i+1 < len(cyc.Path); i++ {
			e := dag.Edge{From: cyc.Path[i], To: cyc.Path[i+1]}
			if ew, ok := g.Witness(e); ok {
				b.WithNote(ew.At, fmt.Sprintf("%s imports %s here", g.Index.Name(e.From), g.Index.Name(e.To)))
			}
		}
		b.WithFix("break-cycle", fmt.Sprintf("remove the import of %q or invert the dependency", w.Module)).Emit()
	}
	return nil
}
