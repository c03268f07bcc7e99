package redis

import "strings"

const keyNamespace = "nowaround"

// GeocodeKey namespaces a cached geocoding answer. kind is forward or reverse.
func (c *Client) GeocodeKey(kind, query string) string {
	return buildKey("geocode", kind, query)
}

// CronLockKey guards one scheduled job across workers.
func (c *Client) CronLockKey(job string) string {
	return buildKey("lock", "cron", job)
}

// StatisticsMonthLockKey single-flights the materialization of one month.
func (c *Client) StatisticsMonthLockKey(month string) string {
	return buildKey("lock", "statistics", month)
}

func buildKey(parts ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		b.WriteByte(':')
		b.WriteString(part)
	}
	return b.String()
}
