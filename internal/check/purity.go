package check

import (
	"fmt"

	"keystone/internal/diag"
)

func checkPurity(p *pass) error {
	if p.env.Denylist == nil {
		return nil
	}
	for _, file := range p.sources(p.c.Args[0].Location) {
		if p.c.Nested(file) {
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
			if s.Resolved != "" {
				continue
			}
			module, denied := p.env.Denylist.Denied(s.Module)
			if !denied {
				continue
			}
			msg := fmt.Sprintf("%s must be pure: imports platform module %q", p.name(0), module)
			diag.ReportViolation(p.rep, p.c, s.Ref(file), msg).
				WithFix("remove-import", fmt.Sprintf("move the use of %q behind a port", module)).
				Emit()
		}
	}
	return nil
}
