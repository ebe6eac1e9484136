package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound            = errors.New("entity not found")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidExecContext  = errors.New("invalid executor context")
	ErrInvalidTransition   = errors.New("status transition not allowed")
	ErrChatAlreadyActive   = errors.New("customer already has an active chat")
	ErrNoActiveChat        = errors.New("customer has no active chat")
	ErrNotChatOwner        = errors.New("requester does not own this chat")
	ErrRecipientUnresolved = errors.New("original sender of the replied message cannot be resolved")
	ErrProposalResolved    = errors.New("proposal already resolved")
	ErrNotAuthorized       = errors.New("sender is not authorized for this operation")
)
