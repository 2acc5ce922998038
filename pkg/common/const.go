package common

const (
	KEY_DASHBOARD_STATS = "dashboard_stats"
	KEY_NATURAL_CRON    = "natural_cron:%s"
)
