package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"keystone/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Check the project's architecture contracts",
	Long: `Load keystone.toml above [dir] (default: current directory), generate
contracts from the architecture definition and check all of them.
Exits with status 1 when any contract is violated or the definition is invalid.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	checkCmd.Flags().Int("jobs", 0, "max parallel contract workers (0=manifest or auto)")
	checkCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Bool("disk-cache", false, "persist parsed imports between runs")
	checkCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	formatStr, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format, err := readFormat(formatStr)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if jobs < 0 {
		return fmt.Errorf("--jobs must be >= 0")
	}
	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return fmt.Errorf("failed to get suggest flag: %w", err)
	}
	fullpath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	diskCache, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return fmt.Errorf("failed to get disk-cache flag: %w", err)
	}
	uiStr, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := uiFromFlagOrEnv(uiStr, cmd.Flags().Changed("ui"))
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	color, err := useColor(cmd)
	if err != nil {
		return err
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	ws, err := openWorkspace(cmd, args, driver.Options{Jobs: jobs, DiskCache: diskCache})
	if err != nil {
		return err
	}
	defer ws.cleanup()

	gen, err := ws.contracts(cmd)
	if err != nil {
		return err
	}

	var res *driver.Result
	// TUI только для человекочитаемого вывода: json/sarif идут в stdout
	if format == formatPretty && !quiet && shouldUseTUI(mode, os.Stderr) && len(gen.Contracts) > 0 {
		res, err = runCheckWithUI(cmd.Context(), ws.engine, ws.manifest.Config.Project.Name, gen.Contracts)
	} else {
		res, err = ws.engine.CheckAll(cmd.Context(), gen.Contracts)
	}
	if err != nil {
		dumpTrace(cmd)
		return err
	}

	rep := &report{definition: gen.Errors, contracts: len(gen.Contracts), result: res}
	if err := render(cmd.OutOrStdout(), rep, ws.manifest.Root, ws.engine.Env.FS.ReadFile, renderOpts{
		format:   format,
		color:    color,
		quiet:    quiet,
		suggest:  suggest,
		fullpath: fullpath,
	}); err != nil {
		return err
	}
	if showTimings {
		printTimings(os.Stderr, res.Timing)
	}
	if rep.failed() {
		dumpTrace(cmd)
		return &exitError{code: 1}
	}
	return nil
}
