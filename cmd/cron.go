package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"warehouse.GO/config"
	"warehouse.GO/cron"
	_ "warehouse.GO/cron/jobs"
)

var jobName string

var cronStartCmd = &cobra.Command{
	Use:   "cron:start",
	Short: "Start the cron scheduler or run a single job by name",
	RunE: func(c *cobra.Command, args []string) error {
		db, err := OpenDB()
		if err != nil {
			return err
		}
		s, err := cron.NewScheduler(db, config.GetLogger())
		if err != nil {
			return err
		}
		if jobName != "" {
			name := strings.ToLower(jobName)
			j, ok := cron.Lookup(name)
			if !ok {
				return fmt.Errorf("unknown job: %s", jobName)
			}
			fmt.Fprintf(c.OutOrStdout(), "Running cron job: %s\n", name)
			return s.Run(c.Context(), j)
		}

		fmt.Fprintln(c.OutOrStdout(), "Starting cron scheduler...")
		s.Start()
		fmt.Fprintf(c.OutOrStdout(), "Cron scheduler started with %d job(s). Press Ctrl+C to exit.\n", s.Entries())
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		s.Stop()
		return nil
	},
}

var cronListCmd = &cobra.Command{
	Use:   "cron:list",
	Short: "List scheduled jobs",
	Run: func(c *cobra.Command, args []string) {
		for _, j := range cron.Jobs() {
			fmt.Fprintf(c.OutOrStdout(), "%-20s %s\n", j.Name, j.Schedule)
		}
	},
}

func init() {
	cronStartCmd.Flags().StringVarP(&jobName, "job", "j", "", "Run a single cron job by name and exit")
	rootCmd.AddCommand(cronStartCmd, cronListCmd)
}
