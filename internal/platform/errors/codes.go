package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Session errors
	CodeSessionIDRequired       Code = "SESSION_ID_REQUIRED"
	CodeSessionNotFound         Code = "SESSION_NOT_FOUND"
	CodeSessionAlreadyExists    Code = "SESSION_ALREADY_EXISTS"
	CodeSessionCampaignRequired Code = "SESSION_CAMPAIGN_REQUIRED"

	// Event errors
	CodeEventIDInvalid        Code = "EVENT_ID_INVALID"
	CodeEventTimestampMissing Code = "EVENT_TIMESTAMP_MISSING"
	CodeEventTypeMissing      Code = "EVENT_TYPE_MISSING"
	CodeEventPayloadInvalid   Code = "EVENT_PAYLOAD_INVALID"

	// Character errors
	CodeCharacterIDRequired Code = "CHARACTER_ID_REQUIRED"
	CodeCharacterNotFound   Code = "CHARACTER_NOT_FOUND"
	CodeCharacterUnknown    Code = "CHARACTER_UNKNOWN"
	CodeCharacterDead       Code = "CHARACTER_DEAD"

	// Combat errors
	CodeCombatAttackerRequired Code = "COMBAT_ATTACKER_REQUIRED"
	CodeCombatDefenderRequired Code = "COMBAT_DEFENDER_REQUIRED"
	CodeCombatNotActive        Code = "COMBAT_NOT_ACTIVE"
	CodeCombatAlreadyActive    Code = "COMBAT_ALREADY_ACTIVE"

	// Skill errors
	CodeSkillUnknown           Code = "SKILL_UNKNOWN"
	CodeSkillXPInvalid         Code = "SKILL_XP_INVALID"
	CodeSkillActionUnknown     Code = "SKILL_ACTION_UNKNOWN"
	CodeSkillLevelTooLow       Code = "SKILL_LEVEL_TOO_LOW"
	CodeSkillDifficultyInvalid Code = "SKILL_DIFFICULTY_INVALID"

	// Storage errors
	CodeStorageFailure Code = "STORAGE_FAILURE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeSessionIDRequired,
		CodeSessionCampaignRequired,
		CodeEventIDInvalid,
		CodeEventTimestampMissing,
		CodeEventTypeMissing,
		CodeEventPayloadInvalid,
		CodeCharacterIDRequired,
		CodeCombatAttackerRequired,
		CodeCombatDefenderRequired,
		CodeSkillXPInvalid,
		CodeSkillDifficultyInvalid:
		return http.StatusBadRequest

	// Not found - missing records
	case CodeSessionNotFound,
		CodeCharacterNotFound,
		CodeCharacterUnknown,
		CodeSkillUnknown,
		CodeSkillActionUnknown:
		return http.StatusNotFound

	// Conflict - state disallows the operation
	case CodeSessionAlreadyExists,
		CodeCharacterDead,
		CodeCombatNotActive,
		CodeCombatAlreadyActive,
		CodeSkillLevelTooLow:
		return http.StatusConflict

	case CodeStorageFailure:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
