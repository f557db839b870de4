package check

import (
	"fmt"

	"keystone/internal/diag"
)

// checkNoDependency reports every import from a file under Args[0] that
// resolves into Args[1].
func checkNoDependency(p *pass) error {
	from, to := p.c.Args[0], p.c.Args[1]
	for _, file := range p.sources(from.Location) {
		specs, ok, err := p.imports(file)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		// from contains to: imports that stay inside to are to's business
		insideTo := to.Location.Matches(file)
		for _, s := range specs {
			if s.Resolved == "" || !to.Location.Matches(s.Resolved) || insideTo {
				continue
			}
			msg := fmt.Sprintf("%s must not depend on %s: import of %q", p.name(0), p.name(1), s.Module)
			diag.ReportViolation(p.rep, p.c, s.Ref(file), msg).
				WithFix("remove-import", fmt.Sprintf("remove the import of %q", s.Module)).
				Emit()
		}
	}
	return nil
}
