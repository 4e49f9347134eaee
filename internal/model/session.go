package model

import (
    "fmt"
    "time"
)

// Session statuses.  A session is ACTIVE from creation until the creator
// closes it; CLOSED is terminal.  Cancelled sessions are deleted outright
// and never appear with a third status.
const (
    SessionActive = "ACTIVE"
    SessionClosed = "CLOSED"
)

// DefaultSessionTitle is used when a session is created with an empty title.
const DefaultSessionTitle = "Group order"

// Session represents one time-boxed ordering window for a group.  Members
// submit selections while the session is ACTIVE; closing it freezes the
// aggregate totals onto the record.
//
// Fields:
//  ID               – primary key identifier.
//  GroupID          – group the session belongs to; immutable.
//  Title            – display title, defaulted when empty.
//  CreatedBy        – member who opened the session; the only identity
//                     allowed to close or cancel it.
//  Status           – ACTIVE or CLOSED; transitions ACTIVE→CLOSED only.
//  Deadline         – creation time plus the chosen offset; submissions
//                     after this instant are rejected.
//  TotalAmountCents – sum of all selection subtotals, written once at close.
//  MemberCount      – number of selections folded at close.
//  OrderID          – ledger order produced at close; nil when the ledger
//                     call failed or no selections existed.
//  CreatedAt        – creation timestamp.
//  ClosedAt         – close timestamp; nil while ACTIVE.
type Session struct {
    ID               uint64     // sessions.id
    GroupID          uint64     // sessions.group_id
    Title            string     // sessions.title
    CreatedBy        uint64     // sessions.created_by
    Status           string     // sessions.status
    Deadline         time.Time  // sessions.deadline
    TotalAmountCents int64      // sessions.total_amount_cents
    MemberCount      int        // sessions.member_count
    OrderID          *uint64    // sessions.order_id (nullable)
    CreatedAt        time.Time  // sessions.created_at
    ClosedAt         *time.Time // sessions.closed_at (nullable)
}

// Expired reports whether the submission deadline has passed at the given
// instant.  Comparisons are done in UTC.
func (s Session) Expired(now time.Time) bool {
    return now.UTC().After(s.Deadline.UTC())
}

// deadlineMinutes is the fixed set of offsets a creator may choose from.
var deadlineMinutes = []int{15, 30, 45, 60, 90, 120}

// AllowedDeadline reports whether the given offset belongs to the fixed set
// of deadline choices.  Offsets outside the set are rejected at the API
// boundary.
func AllowedDeadline(minutes int) bool {
    for _, m := range deadlineMinutes {
        if m == minutes {
            return true
        }
    }
    return false
}

// DeadlineFor computes the absolute deadline from a creation instant and a
// minute offset.  The result is in UTC.
func DeadlineFor(now time.Time, minutes int) time.Time {
    return now.UTC().Add(time.Duration(minutes) * time.Minute)
}

// DeadlineOption is one selectable deadline offset together with a
// human-readable label for display in clients.
type DeadlineOption struct {
    Minutes int    `json:"minutes"`
    Label   string `json:"label"`
}

// DeadlineOptions returns the fixed set of deadline choices as
// {minutes, label} pairs, in ascending order.
func DeadlineOptions() []DeadlineOption {
    opts := make([]DeadlineOption, 0, len(deadlineMinutes))
    for _, m := range deadlineMinutes {
        opts = append(opts, DeadlineOption{Minutes: m, Label: deadlineLabel(m)})
    }
    return opts
}

// deadlineLabel renders a minute offset as a short label, e.g. "in 45 min",
// "in 1 h 30 min", "in 2 h".
func deadlineLabel(minutes int) string {
    if minutes < 60 {
        return fmt.Sprintf("in %d min", minutes)
    }
    h, m := minutes/60, minutes%60
    if m == 0 {
        return fmt.Sprintf("in %d h", h)
    }
    return fmt.Sprintf("in %d h %d min", h, m)
}
