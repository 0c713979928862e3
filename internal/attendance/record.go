package attendance

import (
	"errors"
	"math"
	"time"
)

// Attendance statuses. A day without a record is reported as StatusNotMarked.
const (
	StatusAbsent    = "Absent"
	StatusPresent   = "Present"
	StatusHalfDay   = "Half Day"
	StatusNotMarked = "Not Marked"
)

// DayLayout is the calendar day key format.
const DayLayout = "2006-01-02"

// DefaultHistoryLimit bounds History results.
const DefaultHistoryLimit = 30

var (
	ErrAlreadyClockedIn = errors.New("attendance: already clocked in for today")
	ErrNotClockedIn     = errors.New("attendance: have not clocked in today")
	ErrMissingOwner     = errors.New("attendance: owner identity missing")
	ErrClockSkew        = errors.New("attendance: server clock is not after login time")
)

// Record is one owner's attendance for one calendar day.
type Record struct {
	ID         string     `json:"id" bson:"_id"`
	Owner      string     `json:"owner" bson:"owner"`
	Day        string     `json:"day" bson:"day"`
	LoginTime  time.Time  `json:"loginTime" bson:"loginTime"`
	LogoutTime *time.Time `json:"logoutTime,omitempty" bson:"logoutTime,omitempty"`
	Status     string     `json:"status" bson:"status"`
	TotalHours float64    `json:"totalHours" bson:"totalHours"`
	CreatedAt  time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Open reports whether the owner has clocked in but not yet out.
func (r Record) Open() bool {
	return r.LogoutTime == nil
}

func (r Record) clone() Record {
	if r.LogoutTime != nil {
		t := *r.LogoutTime
		r.LogoutTime = &t
	}
	return r
}

// Status is the answer to "where am I today".
type Status struct {
	Status     string     `json:"status"`
	ClockedIn  bool       `json:"clockedIn"`
	LoginTime  *time.Time `json:"loginTime,omitempty"`
	LogoutTime *time.Time `json:"logoutTime,omitempty"`
	Record     *Record    `json:"record,omitempty"`
}

// TotalHours returns the elapsed time between login and logout in hours,
// rounded to two decimal places.
func TotalHours(login, logout time.Time) float64 {
	hours := float64(logout.Sub(login).Milliseconds()) / float64(time.Hour/time.Millisecond)
	return math.Round(hours*100) / 100
}
