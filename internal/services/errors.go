package services

import "errors"

// Sentinel errors returned by the service layer. Handlers compare with
// errors.Is and map them onto HTTP statuses; anything else is a storage
// failure and surfaces as a 500.
var (
	ErrSoldOut            = errors.New("not enough tickets remaining")
	ErrNotOnSale          = errors.New("tickets are not on sale")
	ErrQuantityOutOfRange = errors.New("quantity must be between 1 and 10")
	ErrTransientConflict  = errors.New("concurrent update conflict")
	ErrNotFound           = errors.New("record not found")
	ErrAlreadyValidated   = errors.New("ticket has already been validated")
	ErrTicketVoid         = errors.New("ticket has been voided")
	ErrInvalidMethod      = errors.New("unknown validation method")
	ErrInvalidDiscount    = errors.New("discount kind, value or window is invalid")
	ErrDiscountOverlap    = errors.New("an active discount already covers part of that window")
	ErrInviteRedeemed     = errors.New("invite code has already been redeemed")
	ErrInviteRevoked      = errors.New("invite code has been revoked")
	ErrInviteExpired      = errors.New("invite code has expired")
	ErrInviteEventNeeded  = errors.New("staff invites must name an event")
	ErrInviteNotPending   = errors.New("invite code is not pending")
)
