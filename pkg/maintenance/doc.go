// Package maintenance holds the housekeeping side of the portal: the
// periodic sweep that prunes old login attempts, long-inactive sessions,
// and stale remember tokens, and the statistics snapshot served to
// administrators.
package maintenance
