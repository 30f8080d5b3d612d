package repository

import "errors"

// ErrReminderNotFound is returned by reminder stores for users without a subscription.
var ErrReminderNotFound = errors.New("reminder not found")
