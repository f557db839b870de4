package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"keystone/internal/contract"
	"keystone/internal/driver"
	"keystone/internal/generate"
	"keystone/internal/source"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-check contracts whenever project files change",
	Long: `Check the project once, then poll for changes and re-check only the
contracts a changed file can affect. Editing the architecture definition
regenerates every contract. Stop with Ctrl+C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("interval", 500*time.Millisecond, "polling interval")
	watchCmd.Flags().Int("jobs", 0, "max parallel contract workers (0=manifest or auto)")
	watchCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
}

type watchRun struct {
	seq     int
	trigger []string
	res     *driver.Result
	err     error
}

func runWatch(cmd *cobra.Command, args []string) error {
	interval, err := cmd.Flags().GetDuration("interval")
	if err != nil {
		return fmt.Errorf("failed to get interval flag: %w", err)
	}
	if interval <= 0 {
		return fmt.Errorf("--interval must be positive")
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return fmt.Errorf("failed to get suggest flag: %w", err)
	}
	color, err := useColor(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cmd.SetContext(ctx)

	ws, err := openWorkspace(cmd, args, driver.Options{Jobs: jobs})
	if err != nil {
		return err
	}
	defer ws.cleanup()
	ctx = cmd.Context()

	session, err := driver.NewSession(ws.engine, ws.manifest.Config.Cache.Size)
	if err != nil {
		return err
	}
	w := &watcher{
		out:     cmd.OutOrStdout(),
		ws:      ws,
		session: session,
		defFile: source.CleanPath(ws.manifest.Config.Project.Definition),
		opts:    renderOpts{format: formatPretty, color: color, suggest: suggest},
		results: make(chan watchRun, 1),
	}
	if err := w.reload(cmd); err != nil {
		return err
	}
	poll := newPoller(ws.manifest.Root, ws.engine.Env.FS)
	if _, err := poll.scan(); err != nil {
		return err
	}
	w.start(ctx, nil)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.wait()
			fmt.Fprintln(w.out, "watch: stopped")
			return nil
		case run := <-w.results:
			w.show(run)
		case <-ticker.C:
			changed, err := poll.scan()
			if err != nil {
				fmt.Fprintf(os.Stderr, "watch: %v\n", err)
				continue
			}
			if len(changed) == 0 {
				continue
			}
			// прерываем текущую проверку до инвалидации кеша
			w.session.Cancel()
			w.wait()
			if slices.Contains(changed, w.defFile) {
				if err := w.reload(cmd); err != nil {
					fmt.Fprintf(os.Stderr, "watch: %v\n", err)
					continue
				}
				w.session.Reset()
			} else {
				w.session.Invalidate(changed...)
			}
			w.start(ctx, changed)
		}
	}
}

type watcher struct {
	out     io.Writer
	ws      *workspace
	session *driver.Session
	defFile string
	opts    renderOpts

	gen       generate.Result
	contracts []*contract.Contract
	seq       int
	running   chan struct{}
	results   chan watchRun
}

func (w *watcher) reload(cmd *cobra.Command) error {
	gen, err := w.ws.contracts(cmd)
	if err != nil {
		return err
	}
	w.gen = gen
	w.contracts = gen.Contracts
	return nil
}

// start launches a check of everything not cached. Only the newest run's
// result is shown; cancelled runs report context.Canceled and are dropped.
func (w *watcher) start(ctx context.Context, trigger []string) {
	w.seq++
	seq := w.seq
	done := make(chan struct{})
	w.running = done
	contracts := w.contracts
	go func() {
		defer close(done)
		res, err := w.session.CheckRelevant(ctx, contracts, "")
		if errors.Is(err, context.Canceled) {
			return
		}
		select {
		case <-w.results:
		default:
		}
		w.results <- watchRun{seq: seq, trigger: trigger, res: res, err: err}
	}()
}

// wait blocks until the run in flight, if any, has returned.
func (w *watcher) wait() {
	if w.running != nil {
		<-w.running
		w.running = nil
	}
}

func (w *watcher) show(run watchRun) {
	if run.seq != w.seq {
		return
	}
	stamp := time.Now().Format("15:04:05")
	if len(run.trigger) == 0 {
		fmt.Fprintf(w.out, "[%s] initial check\n", stamp)
	} else {
		fmt.Fprintf(w.out, "[%s] changed: %s\n", stamp, strings.Join(run.trigger, ", "))
	}
	if run.err != nil {
		fmt.Fprintf(w.out, "watch: %v\n", run.err)
		return
	}
	rep := &report{definition: w.gen.Errors, contracts: len(w.contracts), result: run.res}
	if err := render(w.out, rep, w.ws.manifest.Root, w.ws.engine.Env.FS.ReadFile, w.opts); err != nil {
		fmt.Fprintf(os.Stderr, "watch: %v\n", err)
	}
	fmt.Fprintln(w.out)
}
