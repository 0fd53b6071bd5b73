package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrBlankNotFound   ErrCode = "BLANK_NOT_FOUND"
	ErrUnknownCategory ErrCode = "UNKNOWN_CATEGORY"
	ErrHistoryDisabled ErrCode = "HISTORY_DISABLED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "입력값을 확인해주세요."
	case ErrInvalidID:
		return "ID 형식이 올바르지 않습니다."
	case ErrInvalidPayload:
		return "요청 형식이 올바르지 않습니다."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "연습 문제를 찾을 수 없습니다."
	case ErrBlankNotFound:
		return "빈칸을 찾을 수 없습니다."
	case ErrUnknownCategory:
		return "알 수 없는 카테고리입니다."
	case ErrHistoryDisabled:
		return "점수 기록 기능이 비활성화되어 있습니다."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "요청이 너무 많습니다. 잠시 후 다시 시도해주세요."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "서버 내부 오류가 발생했습니다."
	default:
		return "예상치 못한 오류가 발생했습니다."
	}
}
