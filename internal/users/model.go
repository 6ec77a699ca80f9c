// README: Persistent user profile records.
package users

import "time"

// User is one chat user we have seen, with their last shared location.
type User struct {
	ChatID        int64
	LastLatitude  *float64
	LastLongitude *float64
	LastSeenAt    time.Time
	Contributions int
}
