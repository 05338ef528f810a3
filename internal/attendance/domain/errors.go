package domain

import "errors"

var (
	ErrRecordLocked          = errors.New("record is already reconciled")
	ErrRecordNotFound        = errors.New("reconciliation record not found")
	ErrInvalidFinalStatus    = errors.New("final status is not in the allowed set")
	ErrUnknownCategory       = errors.New("unknown reconciliation category")
	ErrLedgerFinalized       = errors.New("reconciliation has been finalized")
	ErrMissingEmployeeColumn = errors.New("no employee number column found")
	ErrUnknownShift          = errors.New("unknown shift")
)
