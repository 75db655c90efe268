package services

import "errors"

// Sentinel errors shared across services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed   = errors.New("validation failed")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrNicknameRequired   = errors.New("nickname is required")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrMatchKindInvalid   = errors.New("unknown match kind")
	ErrMatchScoreInvalid  = errors.New("match score must be non-negative and cannot be a draw")
	ErrMatchRosterInvalid = errors.New("match roster does not fit the match kind")
	ErrSelfConfirmation   = errors.New("cannot confirm your own match record")

	ErrCircleNameRequired = errors.New("circle name is required")
	ErrCircleFull         = errors.New("circle has reached its member limit")
	ErrCircleInviteOnly   = errors.New("circle can only be joined with an invite")
	ErrAlreadyMember      = errors.New("user is already a member of this circle")
	ErrMembershipPending  = errors.New("membership request is awaiting approval")
	ErrOwnerMustTransfer  = errors.New("circle owner must transfer ownership before leaving")
	ErrInviteExpired      = errors.New("invite has expired")

	ErrAchievementNotManual = errors.New("achievement cannot be granted manually")
	ErrUnsupportedMediaType = errors.New("unsupported media content type")

	// Conflicts
	ErrUserEmailConflict    = errors.New("email address is already in use")
	ErrUserNicknameConflict = errors.New("nickname is already in use")
	ErrCircleNameConflict   = errors.New("circle name is already in use")

	// Authentication and authorization
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")
	ErrOwnerActionRequired  = errors.New("only the circle owner or an admin can perform this action")

	// Entity-specific not-found errors; more context than the generic one
	ErrUserNotFound        = errors.New("user not found")
	ErrMatchNotFound       = errors.New("match not found")
	ErrCircleNotFound      = errors.New("circle not found")
	ErrMembershipNotFound  = errors.New("membership not found")
	ErrInviteNotFound      = errors.New("invite not found")
	ErrAchievementNotFound = errors.New("achievement not found")
)
