// Package booking carries the status vocabulary shared by the application
// services and the persistence layer.
package booking

// Status is the lifecycle state of a booking.
type Status string

const (
	// StatusPending indicates a booking awaiting business confirmation.
	StatusPending Status = "pending"
	// StatusPendingDeposit indicates a booking awaiting a deposit payment.
	StatusPendingDeposit Status = "pending_deposit"
	// StatusConfirmed indicates a confirmed upcoming booking.
	StatusConfirmed Status = "confirmed"
	// StatusInProgress indicates a booking currently being serviced.
	StatusInProgress Status = "in_progress"
	// StatusCompleted indicates a booking that was serviced to completion.
	StatusCompleted Status = "completed"
	// StatusCancelled indicates a booking that was called off.
	StatusCancelled Status = "cancelled"
	// StatusNoShow indicates the customer did not turn up.
	StatusNoShow Status = "no_show"
)

// Cancellable reports whether a booking in this status may still be
// cancelled. The same statuses mark a booking as occupying its staff member's
// time for conflict purposes; completed, cancelled, and no-show bookings are
// terminal.
func (s Status) Cancellable() bool {
	switch s {
	case StatusPending, StatusPendingDeposit, StatusConfirmed, StatusInProgress:
		return true
	}
	return false
}

// CancellableStatuses returns the closed set of non-terminal statuses, in a
// fresh slice callers may reorder.
func CancellableStatuses() []Status {
	return []Status{StatusPending, StatusPendingDeposit, StatusConfirmed, StatusInProgress}
}

// ReminderStatus is the lifecycle state of a booking reminder.
type ReminderStatus string

const (
	// ReminderPending indicates the reminder has not been delivered yet.
	ReminderPending ReminderStatus = "pending"
	// ReminderSent indicates the reminder was handed to the notification sink.
	ReminderSent ReminderStatus = "sent"
	// ReminderCancelled indicates the reminder was withdrawn with its booking.
	ReminderCancelled ReminderStatus = "cancelled"
)
