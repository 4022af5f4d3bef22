package config

import "strings"

// CronSchedule returns the schedule for a job, overridable via CRON_<NAME> (":" and "-" become "_").
func CronSchedule(name, fallback string) string {
	key := "CRON_" + strings.ToUpper(strings.NewReplacer(":", "_", "-", "_").Replace(name))
	return GetEnv(key, fallback)
}
