package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAlreadyUpvoted     = errors.New("you have already upvoted this post")
	ErrNotUpvoted         = errors.New("you have not upvoted this post")
	ErrAlreadyApplied     = errors.New("you have already applied")
	ErrPostUnavailable    = errors.New("post is no longer available")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrAmountOutOfRange   = errors.New("amount is outside the allowed range")
	ErrDuplicateOperation = errors.New("duplicate operation")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrOutOfStock         = errors.New("insufficient stock")
)
