package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"keystone/internal/contract"
	"keystone/internal/driver"
	"keystone/internal/ui"
)

type checkOutcome struct {
	result *driver.Result
	err    error
}

// runCheckWithUI runs CheckAll in the background and renders its progress.
// Closing the UI early (ctrl+c) cancels the check.
func runCheckWithUI(ctx context.Context, engine *driver.Engine, title string, contracts []*contract.Contract) (*driver.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ids := make([]string, len(contracts))
	for i, c := range contracts {
		ids[i] = c.ID
	}
	events := make(chan ui.Event, len(contracts))
	outcomeCh := make(chan checkOutcome, 1)

	prev := engine.Observer
	engine.Observer = func(ev driver.Event) {
		events <- ui.Event{Contract: ev.Contract.ID, Violations: ev.Violations}
	}
	go func() {
		res, err := engine.CheckAll(ctx, contracts)
		outcomeCh <- checkOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("checking "+title, ids, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// UI closed first only on ctrl+c or error; stop the workers
	cancel()
	outcome := <-outcomeCh
	engine.Observer = prev
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
