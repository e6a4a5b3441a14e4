package provision

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"combitest/internal/config"
)

// Databases creates per-worker databases.
type Databases interface {
	EnsureDatabases(ctx context.Context, workerCount int) ([]int, error)
}

// Provisioner prepares the per-worker environment before a run.
type Provisioner interface {
	Run(ctx context.Context, workerCount int) error
}

// SetupResult is the outcome of the setup command for one worker.
type SetupResult struct {
	WorkerID int
	Success  bool
	Output   string
	Error    error
}

// SetupProvisioner ensures the worker databases exist and then runs the
// configured setup command (e.g. schema migrations) once per database, in
// parallel, with DB_DATABASE pointing at that worker's database.
type SetupProvisioner struct {
	config    *config.Config
	databases Databases
	out       io.Writer
}

// NewSetupProvisioner creates a SetupProvisioner. Without a setup command
// it only creates the databases.
func NewSetupProvisioner(cfg *config.Config, dbs Databases) *SetupProvisioner {
	return &SetupProvisioner{
		config:    cfg,
		databases: dbs,
		out:       os.Stderr,
	}
}

// Run provisions workers 1..workerCount.
func (sp *SetupProvisioner) Run(ctx context.Context, workerCount int) error {
	color.New(color.FgCyan).Fprintln(sp.out, "\n╔════════════════════════════════════════════════════════════╗")
	color.New(color.FgCyan).Fprintln(sp.out, "║               Provisioning Worker Databases                ║")
	color.New(color.FgCyan).Fprintln(sp.out, "╚════════════════════════════════════════════════════════════╝")

	workers, err := sp.databases.EnsureDatabases(ctx, workerCount)
	if err != nil {
		return fmt.Errorf("failed to check databases: %w", err)
	}
	if len(workers) == 0 {
		return fmt.Errorf("no worker databases available")
	}
	command := strings.Fields(sp.config.Flags.Setup)
	if len(command) == 0 {
		color.New(color.FgGreen).Fprintf(sp.out, "✓ %d worker database(s) ready\n", len(workers))
		return nil
	}

	bar := progressbar.NewOptions(len(workers),
		progressbar.OptionSetDescription(color.CyanString("Setting up: ")),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(sp.out),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(sp.out, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	var wg sync.WaitGroup
	results := make(chan SetupResult, len(workers))
	start := time.Now()

	for _, id := range workers {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			results <- sp.runForWorker(ctx, id, command)
		}(id)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var failed []SetupResult
	for result := range results {
		_ = bar.Add(1)
		if !result.Success {
			failed = append(failed, result)
		}
	}
	_ = bar.Finish()

	if len(failed) > 0 {
		color.New(color.FgRed).Fprintf(sp.out, "✗ Setup failed for %d worker(s)\n", len(failed))
		for _, r := range failed {
			color.New(color.FgRed).Fprintf(sp.out, "  Worker %d (DB: %s): %v\n", r.WorkerID, sp.config.GetDatabaseName(r.WorkerID), r.Error)
		}
		return fmt.Errorf("setup failed for %d worker(s)", len(failed))
	}

	color.New(color.FgGreen).Fprintf(sp.out, "✓ Setup completed for all %d workers\n", len(workers))
	color.New(color.FgWhite).Fprintf(sp.out, "Duration: %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func (sp *SetupProvisioner) runForWorker(ctx context.Context, workerID int, command []string) SetupResult {
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = sp.config.ProjectPath
	cmd.Env = append(os.Environ(), "DB_DATABASE="+sp.config.GetDatabaseName(workerID))

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return SetupResult{WorkerID: workerID, Error: fmt.Errorf("failed to create stdout pipe: %w", err)}
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return SetupResult{WorkerID: workerID, Error: fmt.Errorf("failed to start command: %w", err)}
	}

	var output strings.Builder
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		output.WriteString(scanner.Text())
		output.WriteString("\n")
	}

	err = cmd.Wait()
	return SetupResult{
		WorkerID: workerID,
		Success:  err == nil,
		Output:   output.String(),
		Error:    err,
	}
}
