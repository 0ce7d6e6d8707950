// Package dates handles every point where a preorder date crosses the
// client/server boundary.
//
// The server expects preorder dates as "YYYY-MM-DD" strings in the user's
// local calendar. The one rule of this package: dates are always built from
// and parsed into LOCAL calendar fields, never through a UTC serialization.
// Parsing "2024-03-01" with a UTC-based parser in a UTC+5 timezone yields
// February 29th local time, and formatting a late-evening local time through
// UTC shifts it forward a day. Both bugs shipped in earlier clients of this
// API; all date conversion therefore goes through Format and Parse here.
package dates
