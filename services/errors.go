package services

import (
	"errors"

	"github.com/Dosada05/scoreboard/scoring"
)

// Общие ошибки, используемые в сервисах и маппинге HTTP.
var (
	// Ошибки валидации
	ErrTeamNameRequired    = errors.New("team name is required")
	ErrTeamSlotInvalid     = errors.New("team slot must be a positive number")
	ErrLogoRequired        = errors.New("team logo is required")
	ErrLogoNotImage        = errors.New("team logo must be an image")
	ErrSelectorEmpty       = errors.New("at least one slot or team id is required")
	ErrSlotPositionsEmpty  = errors.New("at least one slot position is required")
	ErrInvalidRoundNumber  = scoring.ErrInvalidRoundNumber
	ErrInvalidKills        = scoring.ErrInvalidKills
	ErrInvalidPlayerIndex  = scoring.ErrInvalidPlayerIndex
	ErrInvalidPosition     = scoring.ErrInvalidPosition
	ErrNoActiveRound       = scoring.ErrNoActiveRound
	ErrInvariantViolation  = scoring.ErrInvariantViolation
	ErrNotificationRequest = errors.New("team id and round number are required")

	// Ошибки конфликтов
	ErrSlotConflict       = errors.New("team slot is already taken")
	ErrTeamNameConflict   = errors.New("team name is already in use")
	ErrDuplicateRound     = scoring.ErrDuplicateRound
	ErrConcurrentModified = errors.New("team was modified concurrently")

	// Не найдено
	ErrTeamNotFound         = errors.New("team not found")
	ErrRoundNotFound        = scoring.ErrRoundNotFound
	ErrNotificationNotFound = errors.New("elimination notification not found")

	// Внешние зависимости
	ErrUploadFailed = errors.New("failed to upload team logo")

	ErrTeamCreationFailed = errors.New("failed to create team")
	ErrTeamUpdateFailed   = errors.New("failed to update team")
	ErrTeamDeleteFailed   = errors.New("failed to delete team")
	ErrSyncFailed         = errors.New("failed to sync elimination notifications")
)

// ErrorKind classifies a service error for batch reports and HTTP mapping.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindUpstream   ErrorKind = "upstream"
	KindInternal   ErrorKind = "internal"
)

func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTeamNotFound),
		errors.Is(err, ErrRoundNotFound),
		errors.Is(err, ErrNotificationNotFound):
		return KindNotFound
	case errors.Is(err, ErrSlotConflict),
		errors.Is(err, ErrTeamNameConflict),
		errors.Is(err, ErrDuplicateRound),
		errors.Is(err, ErrConcurrentModified):
		return KindConflict
	case errors.Is(err, ErrUploadFailed):
		return KindUpstream
	case errors.Is(err, ErrInvariantViolation):
		return KindInternal
	case errors.Is(err, ErrTeamNameRequired),
		errors.Is(err, ErrTeamSlotInvalid),
		errors.Is(err, ErrLogoRequired),
		errors.Is(err, ErrLogoNotImage),
		errors.Is(err, ErrSelectorEmpty),
		errors.Is(err, ErrSlotPositionsEmpty),
		errors.Is(err, ErrInvalidRoundNumber),
		errors.Is(err, ErrInvalidKills),
		errors.Is(err, ErrInvalidPlayerIndex),
		errors.Is(err, ErrInvalidPosition),
		errors.Is(err, ErrNoActiveRound),
		errors.Is(err, ErrNotificationRequest):
		return KindValidation
	default:
		return KindInternal
	}
}
