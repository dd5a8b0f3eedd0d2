package model

import "time"

// Reminder thresholds for abandoned payments.
const (
	AbandonReminder1After = 30 * time.Minute
	AbandonReminder2After = 4 * time.Hour
	AbandonReminder3After = 24 * time.Hour
	AbandonDiscardAfter   = 48 * time.Hour
)

// PendingPayment is a ledger entry used only for abandonment-reminder
// scheduling. It is a derived index over pending/processing transactions;
// losing one never corrupts the order or transaction record.
type PendingPayment struct {
	TransactionID string
	UserID        int64
	ServiceType   ServiceType
	Price         int64 // cents
	CreatedAt     time.Time
	Reminder1Sent bool
	Reminder2Sent bool
	Reminder3Sent bool
	Confirmed     bool
}

// NextReminder returns the 1-based index of the reminder due at elapsed time
// since creation, or 0 when none is due. Each reminder is gated by its own
// sent-flag so a sweep can re-run without re-firing.
func (p *PendingPayment) NextReminder(now time.Time) int {
	if p.Confirmed {
		return 0
	}
	elapsed := now.Sub(p.CreatedAt)
	switch {
	case elapsed >= AbandonReminder3After && !p.Reminder3Sent:
		return 3
	case elapsed >= AbandonReminder2After && !p.Reminder2Sent:
		return 2
	case elapsed >= AbandonReminder1After && !p.Reminder1Sent:
		return 1
	}
	return 0
}

// MarkReminded records reminder n as sent. Earlier reminders are marked too:
// once the 24h reminder has fired, the 30m and 4h ones are superseded and
// must not fire afterwards.
func (p *PendingPayment) MarkReminded(n int) {
	switch n {
	case 3:
		p.Reminder3Sent = true
		fallthrough
	case 2:
		p.Reminder2Sent = true
		fallthrough
	case 1:
		p.Reminder1Sent = true
	}
}

func (p *PendingPayment) Stale(now time.Time) bool {
	return now.Sub(p.CreatedAt) >= AbandonDiscardAfter
}
