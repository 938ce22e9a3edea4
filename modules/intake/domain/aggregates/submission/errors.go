package submission

import "github.com/storefixhq/storefix/pkg/serrors"

var (
	ErrNotFound = serrors.NewError("SUBMISSION_NOT_FOUND", "Submission not found.", "")

	ErrIncomplete = serrors.NewError("INCOMPLETE_SUBMISSION",
		"Please include a message or a voice note so we know how to help.", "")

	ErrSuspiciousInput = serrors.NewError("SUSPICIOUS_INPUT",
		"Your submission contains content we can't accept. Please remove any code or links and try again.", "")

	ErrRateLimited = serrors.NewError("RATE_LIMITED",
		"You've reached the submission limit. Please try again later.", "")

	ErrInvalidReference = serrors.NewError("INVALID_REFERENCE",
		"The submission reference is malformed.", "")

	ErrFileTooLarge = serrors.NewError("FILE_TOO_LARGE",
		"Your voice note is too large. Please keep it under 10 MB.", "")

	ErrUnsupportedAudio = serrors.NewError("UNSUPPORTED_AUDIO",
		"This audio format isn't supported. Please record again in your browser.", "")

	ErrVoiceNoteTooLong = serrors.NewError("VOICE_NOTE_TOO_LONG",
		"Voice notes are limited to three minutes.", "")

	ErrOriginNotAllowed = serrors.NewError("ORIGIN_NOT_ALLOWED",
		"Submissions from this site are not accepted.", "")

	ErrInvalidStatus = serrors.NewError("INVALID_STATUS",
		"Unknown submission status.", "")

	ErrResetDisabled = serrors.NewError("RESET_DISABLED",
		"Bulk reset is disabled in this environment.", "")
)
