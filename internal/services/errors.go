// Package services defines the business logic for webhook ingestion, lead
// management and dashboard authentication. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

// Webhook errors.
var (
	// ErrNotWhatsApp is returned when a webhook payload is not from a
	// WhatsApp Business Account.
	ErrNotWhatsApp = errors.New("payload is not a whatsapp business account event")
)

// Lead errors.
var (
	// ErrLeadNotFound indicates that the requested lead does not exist.
	ErrLeadNotFound = errors.New("lead not found")

	// ErrPhoneRequired is returned when a lead is created without a phone number.
	ErrPhoneRequired = errors.New("lead phone number is required")

	// ErrLeadExists is returned when a lead with the same phone number exists.
	ErrLeadExists = errors.New("lead with this phone number already exists")

	// ErrInvalidStatus is returned for a status outside active/inactive/archived.
	ErrInvalidStatus = errors.New("invalid lead status")

	// ErrInvalidScore is returned for a NEET score that is not a number.
	ErrInvalidScore = errors.New("invalid neet score")
)

// Auth errors.
var (
	// ErrInvalidCredentials covers unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailNotAllowed is returned when login is restricted to an allowlist
	// that does not include the email.
	ErrEmailNotAllowed = errors.New("email not allowed")

	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("user already exists")

	// ErrInvalidToken is returned for missing, malformed, expired or
	// orphaned bearer tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrAuthDisabled is returned when no signing secret is configured.
	ErrAuthDisabled = errors.New("authentication is not configured")

	// ErrUserNotFound indicates the authenticated user no longer exists.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidInput is returned when required registration fields are missing.
	ErrInvalidInput = errors.New("name, email and password are required")
)
