package state

import "errors"

// ErrInsufficientBalance is returned when a debit, reservation, or transfer
// would take an account's free or reserved balance negative.
var ErrInsufficientBalance = errors.New("state: insufficient balance")
