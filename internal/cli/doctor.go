package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/amholt/bravely/internal/backup"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false

	// Check 1: store reachable and document parses
	if err := checkDocument(ctx); err != nil {
		fmt.Printf("❌ State document: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ State document: OK\n")
	}

	// Check 2: session token configured
	if ctx.Config.SessionToken == "" {
		fmt.Printf("⚠ Session token: WARNING\n")
		fmt.Printf("   BRAVELY_SESSION_TOKEN is unset; writes will be disabled\n")
	} else {
		fmt.Printf("✓ Session token: OK\n")
	}

	// Check 3: backups present (warning only)
	if err := checkBackupsPresent(ctx); err != nil {
		fmt.Printf("⚠ Backups present: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Backups present: OK\n")
	}

	// Check 4: no other bravely process on the same store
	if err := checkConcurrentProcess(); err != nil {
		fmt.Printf("⚠ Concurrent processes: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Concurrent processes: OK\n")
	}

	// Check 5: clock sanity
	if err := checkClock(); err != nil {
		fmt.Printf("❌ Clock: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock: OK\n")
	}

	fmt.Println()
	if hasError {
		return fmt.Errorf("diagnostics found problems")
	}
	fmt.Println("All checks passed.")
	return nil
}

func checkDocument(ctx *Context) error {
	gw, err := ctx.OpenGateway()
	if err != nil {
		return err
	}
	defer gw.Close()

	exists, err := gw.Exists()
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("no document yet for tenant %q, run 'bravely init' first", ctx.Config.Tenant)
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	m := backup.NewManager(ctx.Config.DocumentPath())
	backups, err := m.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found, consider 'bravely backup create'")
	}
	return nil
}

// checkConcurrentProcess warns when another bravely process is running:
// two writers on the same local store can interleave debounced writes.
func checkConcurrentProcess() error {
	procs, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("could not list processes: %w", err)
	}
	self := os.Getpid()
	for _, p := range procs {
		if p.Pid() == self {
			continue
		}
		if strings.HasPrefix(p.Executable(), "bravely") {
			return fmt.Errorf("another bravely process is running (pid %d)", p.Pid())
		}
	}
	return nil
}

// checkClock guards the action ID scheme, which uses wall-clock
// milliseconds as strictly increasing identifiers.
func checkClock() error {
	now := time.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock reads %s, which predates this software", now.Format("2006-01-02"))
	}
	return nil
}
