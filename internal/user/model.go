package user

import "time"

// DateLayout is the wire and storage layout of birthdays
const DateLayout = "2006-01-02"

// User represents a user in the system
type User struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	DisplayName *string    `json:"display_name,omitempty"`
	Birthday    *time.Time `json:"birthday,omitempty"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Name is what other users see: the display name when set, else the username
func (u *User) Name() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.Username
}

// NextBirthday returns the first occurrence of the user's birthday on or after
// from's calendar day. ok is false when no birthday is set.
func (u *User) NextBirthday(from time.Time) (next time.Time, ok bool) {
	if u.Birthday == nil {
		return time.Time{}, false
	}
	return NextOccurrence(*u.Birthday, from), true
}

// NextOccurrence returns the first anniversary of date on or after from's
// calendar day, in UTC. A Feb 29 date falls on Feb 28 in common years.
func NextOccurrence(date, from time.Time) time.Time {
	from = truncateDay(from)
	for year := from.Year(); ; year++ {
		occ := anniversary(date, year)
		if !occ.Before(from) {
			return occ
		}
	}
}

// DaysBetween counts whole calendar days from a to b
func DaysBetween(a, b time.Time) int {
	return int(truncateDay(b).Sub(truncateDay(a)).Hours() / 24)
}

func anniversary(date time.Time, year int) time.Time {
	month, day := date.Month(), date.Day()
	if month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
