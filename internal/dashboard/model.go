// File: internal/dashboard/model.go
package dashboard

import (
	"smart_advisor_backend/internal/calendar"
	"smart_advisor_backend/internal/events"
	"smart_advisor_backend/internal/weather"

	gcal "google.golang.org/api/calendar/v3"
)

// NoticeLevel grades transient user-facing messages.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient message surfaced alongside the dashboard data, the
// equivalent of a flash message.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// CalendarSlot is the calendar portion of the view-model. NeedsReauth is
// true whenever the user must repeat the authorization flow; AuthURL is set
// in that case so the client can render a reconnect link.
type CalendarSlot struct {
	Events      []*gcal.Event   `json:"events,omitempty"`
	Err         *calendar.Error `json:"error,omitempty"`
	NeedsReauth bool            `json:"needs_reauth"`
}

// ViewModel is the per-request dashboard aggregate. The three slots are
// independent; any subset may hold an error while the others hold data, and
// every slot always has a definite value.
type ViewModel struct {
	Location      *string         `json:"location"`
	Weather       *weather.Result `json:"weather"`
	Events        *events.Result  `json:"events"`
	Calendar      *CalendarSlot   `json:"calendar"`
	GoogleAuthURL string          `json:"google_auth_url,omitempty"`
	Notices       []Notice        `json:"notices,omitempty"`
}
