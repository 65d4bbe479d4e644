package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeMissingField   = "missing_field"

	// Resource errors
	ErrCodeNotFound = "not_found"
	ErrCodeConflict = "conflict"

	// Game errors
	ErrCodeGameJoinFailed     = "game_join_failed"
	ErrCodeGameFull           = "game_full"
	ErrCodeGameCreationFailed = "game_creation_failed"
	ErrCodeInvalidGameID      = "invalid_game_id"
	ErrCodeQuestionNotFound   = "question_not_found"
	ErrCodeSubmitFailed       = "submit_failed"

	// Costume vote errors
	ErrCodeAlreadyVoted = "already_voted"
	ErrCodeVoteFailed   = "vote_failed"

	// Guestbook errors
	ErrCodeGuestbookWriteFailed = "guestbook_write_failed"

	// Server errors
	ErrCodeInternalError = "internal_error"
)
