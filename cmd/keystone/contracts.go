package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"keystone/internal/contract"
	"keystone/internal/diagfmt"
	"keystone/internal/driver"
)

var contractsCmd = &cobra.Command{
	Use:   "contracts [dir]",
	Short: "List the contracts generated from the architecture definition",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runContracts,
}

func init() {
	contractsCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	contractsCmd.Flags().String("type", "", "only list contracts of this type (e.g. noCycles)")
}

type contractJSON struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Args        []string `json:"args"`
	Declared    string   `json:"declared"`
}

func runContracts(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	typ, err := cmd.Flags().GetString("type")
	if err != nil {
		return fmt.Errorf("failed to get type flag: %w", err)
	}
	colored, err := useColor(cmd)
	if err != nil {
		return err
	}

	ws, err := openWorkspace(cmd, args, driver.Options{})
	if err != nil {
		return err
	}
	defer ws.cleanup()
	gen, err := ws.contracts(cmd)
	if err != nil {
		return err
	}
	list, err := filterContracts(gen.Contracts, typ)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		err = writeContractsJSON(out, list)
	} else {
		err = writeContractsPretty(out, list, colored)
	}
	if err != nil {
		return err
	}
	if len(gen.Errors) > 0 {
		rep := &report{definition: gen.Errors, contracts: len(gen.Contracts)}
		if err := diagfmt.Pretty(cmd.ErrOrStderr(), rep.diagnostics(), nil, diagfmt.PrettyOpts{Color: colored}); err != nil {
			return err
		}
		return &exitError{code: 1}
	}
	return nil
}

func filterContracts(list []*contract.Contract, typ string) ([]*contract.Contract, error) {
	if typ == "" {
		return list, nil
	}
	for _, t := range contract.AllTypes() {
		if strings.EqualFold(t.String(), typ) {
			var out []*contract.Contract
			for _, c := range list {
				if c.Type == t {
					out = append(out, c)
				}
			}
			return out, nil
		}
	}
	names := make([]string, 0, len(contract.AllTypes()))
	for _, t := range contract.AllTypes() {
		names = append(names, t.String())
	}
	return nil, fmt.Errorf("unknown contract type %q (expected one of %s)", typ, strings.Join(names, ", "))
}

func writeContractsPretty(w io.Writer, list []*contract.Contract, useColor bool) error {
	id := color.New(color.Bold)
	dim := color.New(color.Faint)
	if useColor {
		id.EnableColor()
		dim.EnableColor()
	} else {
		id.DisableColor()
		dim.DisableColor()
	}
	for _, c := range list {
		if _, err := fmt.Fprintf(w, "%s\n    %s %s\n", id.Sprint(c.ID), c.Description, dim.Sprintf("(%s)", c.Decl)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d contract(s)\n", len(list))
	return err
}

func writeContractsJSON(w io.Writer, list []*contract.Contract) error {
	payload := make([]contractJSON, 0, len(list))
	for _, c := range list {
		args := make([]string, len(c.Args))
		for i, a := range c.Args {
			args[i] = a.Location.String()
		}
		payload = append(payload, contractJSON{
			ID:          c.ID,
			Type:        c.Type.String(),
			Description: c.Description,
			Args:        args,
			Declared:    c.Decl.String(),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
