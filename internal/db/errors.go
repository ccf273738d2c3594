package db

import "errors"

// Domain-level database error sentinels.
var (
	ErrUserNotFound = errors.New("user not found")

	ErrDomainNotFound  = errors.New("domain not found")
	ErrDuplicateDomain = errors.New("domain already tracked")

	ErrKeywordNotFound  = errors.New("keyword not found")
	ErrDuplicateKeyword = errors.New("keyword already tracked for this domain")

	// ErrRankingNotFound means a keyword has no history yet; the first
	// check of a keyword always sees this on the previous-latest read.
	ErrRankingNotFound = errors.New("no ranking recorded")

	ErrNotificationNotFound = errors.New("notification not found")

	ErrSettingNotFound = errors.New("setting not found")
)
