package booking

import (
	"sort"
	"time"

	"github.com/ghaggin/coachportal/internal/model"
)

// View is the dashboard's split of a booking list at one instant.
type View struct {
	Upcoming []model.Booking
	Past     []model.Booking
}

func (v View) Empty() bool {
	return len(v.Upcoming) == 0 && len(v.Past) == 0
}

// Partition puts bookings at or after now in Upcoming, soonest first, and
// the rest in Past, most recent first. The input is not modified.
func Partition(bookings []model.Booking, now time.Time) View {
	var v View
	for _, b := range bookings {
		if b.ScheduledTime.Before(now) {
			v.Past = append(v.Past, b)
		} else {
			v.Upcoming = append(v.Upcoming, b)
		}
	}

	sort.SliceStable(v.Upcoming, func(i, j int) bool {
		return v.Upcoming[i].ScheduledTime.Before(v.Upcoming[j].ScheduledTime.Time)
	})
	sort.SliceStable(v.Past, func(i, j int) bool {
		return v.Past[i].ScheduledTime.After(v.Past[j].ScheduledTime.Time)
	})
	return v
}
