package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mapmem/mapmem-go/internal/service"
)

var (
	scheduleSpec       string
	scheduleNamespaces []string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the consolidation scheduler in the foreground",
	Long: `Schedule runs consolidation on a cron schedule until interrupted. Useful
when the MCP server is not the long-lived process, for example when agents
connect through a supervisor that spawns mapmem per session.

Examples:
  mapmemctl schedule
  mapmemctl schedule --cron "@every 1h" --namespaces org,team-billing`,
	Run: runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleSpec, "cron", "", "cron spec (defaults to the configured schedule)")
	scheduleCmd.Flags().StringSliceVar(&scheduleNamespaces, "namespaces", nil, "namespaces to consolidate (defaults to the active namespace)")
}

func runSchedule(cmd *cobra.Command, args []string) {
	spec := scheduleSpec
	if spec == "" {
		spec = cfg.ConsolidateCron
	}
	namespaces := scheduleNamespaces
	if len(namespaces) == 0 {
		namespaces = []string{namespace}
	}

	scheduler, err := service.NewScheduler(newConsolidator(), spec, namespaces, nil, quietLogger())
	if err != nil {
		exitWithError("invalid schedule: %v", err)
	}

	fmt.Printf("Consolidating %s on schedule %q. Ctrl-C to stop.\n",
		strings.Join(namespaces, ", "), spec)
	scheduler.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh

	scheduler.Stop()
	fmt.Println("Scheduler stopped.")
}
