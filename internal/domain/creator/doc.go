// Package creator contains the Creator bounded context: the roster of tracked
// creators and the daily social snapshots collected for them.
package creator
