package tx

import "fmt"

// Result represents a transaction result code.
//
// Codes are organized by category, following the ledger convention:
// tes (success), tec (state claim failures), tef (failures including
// authorization), tem (malformed input).
type Result int

const (
	// TesSUCCESS: the transaction applied in full.
	TesSUCCESS Result = 0

	// tec codes (100-199): the transaction was well formed and authorized
	// but rejected against current ledger state. Nothing was applied; the
	// caller must query state to determine the correct next action.
	TecALREADY_INITIALIZED      Result = 100
	TecSESSION_EXISTS           Result = 101
	TecNO_ENTRY                 Result = 102
	TecNO_TARGET                Result = 103
	TecALREADY_PAID             Result = 104
	TecNOT_ELIGIBLE_FOR_REFUND  Result = 105
	TecNOT_ELIGIBLE_FOR_PAYOUT  Result = 106
	TecPLAYERS_NOT_SETTLED      Result = 107
	TecUNFUNDED                 Result = 108

	// tef codes (-199 to -100): the transaction cannot apply.
	TefFAILURE      Result = -199
	TefNO_AUTHORITY Result = -198
	TefINTERNAL     Result = -192

	// tem codes (-299 to -200): the transaction is malformed and would
	// never be valid.
	TemMALFORMED            Result = -299
	TemBAD_SRC_ACCOUNT      Result = -298
	TemINVALID              Result = -297
	TemTOO_MANY_TEAMS       Result = -296
	TemTEAM_TOO_LARGE       Result = -295
	TemEMPTY_TEAM           Result = -294
	TemTEAM_LENGTH_MISMATCH Result = -293
	TemDUPLICATE_PLAYER     Result = -292
	TemFEE_TOO_HIGH         Result = -291
	TemBAD_AMOUNT           Result = -290
)

// Category groups result codes into the caller-facing error taxonomy.
type Category int

const (
	CategorySuccess Category = iota
	// CategoryValidation: malformed input, rejected before any mutation,
	// recoverable by resubmitting corrected input.
	CategoryValidation
	// CategoryAuthorization: wrong signer, rejected, no mutation.
	CategoryAuthorization
	// CategoryState: valid and authorized but not applicable to current
	// state; rejected, no mutation.
	CategoryState
	// CategoryInternal: engine-side failure.
	CategoryInternal
)

var resultNames = map[Result]string{
	TesSUCCESS:                 "tesSUCCESS",
	TecALREADY_INITIALIZED:     "tecALREADY_INITIALIZED",
	TecSESSION_EXISTS:          "tecSESSION_EXISTS",
	TecNO_ENTRY:                "tecNO_ENTRY",
	TecNO_TARGET:               "tecNO_TARGET",
	TecALREADY_PAID:            "tecALREADY_PAID",
	TecNOT_ELIGIBLE_FOR_REFUND: "tecNOT_ELIGIBLE_FOR_REFUND",
	TecNOT_ELIGIBLE_FOR_PAYOUT: "tecNOT_ELIGIBLE_FOR_PAYOUT",
	TecPLAYERS_NOT_SETTLED:     "tecPLAYERS_NOT_SETTLED",
	TecUNFUNDED:                "tecUNFUNDED",
	TefFAILURE:                 "tefFAILURE",
	TefNO_AUTHORITY:            "tefNO_AUTHORITY",
	TefINTERNAL:                "tefINTERNAL",
	TemMALFORMED:               "temMALFORMED",
	TemBAD_SRC_ACCOUNT:         "temBAD_SRC_ACCOUNT",
	TemINVALID:                 "temINVALID",
	TemTOO_MANY_TEAMS:          "temTOO_MANY_TEAMS",
	TemTEAM_TOO_LARGE:          "temTEAM_TOO_LARGE",
	TemEMPTY_TEAM:              "temEMPTY_TEAM",
	TemTEAM_LENGTH_MISMATCH:    "temTEAM_LENGTH_MISMATCH",
	TemDUPLICATE_PLAYER:        "temDUPLICATE_PLAYER",
	TemFEE_TOO_HIGH:            "temFEE_TOO_HIGH",
	TemBAD_AMOUNT:              "temBAD_AMOUNT",
}

var resultMessages = map[Result]string{
	TesSUCCESS:                 "The transaction was applied.",
	TecALREADY_INITIALIZED:     "A configuration already exists for this game.",
	TecSESSION_EXISTS:          "A session already exists for this game and seed.",
	TecNO_ENTRY:                "A required ledger entry does not exist.",
	TecNO_TARGET:               "The player is not a member of this session.",
	TecALREADY_PAID:            "The player has already deposited the entry fee.",
	TecNOT_ELIGIBLE_FOR_REFUND: "The player is not eligible for a refund.",
	TecNOT_ELIGIBLE_FOR_PAYOUT: "The player is not eligible for a payout.",
	TecPLAYERS_NOT_SETTLED:     "One or more players are not yet settled.",
	TecUNFUNDED:                "The source balance cannot cover the transfer.",
	TefFAILURE:                 "The transaction failed to apply.",
	TefNO_AUTHORITY:            "The signing account is not authorized for this operation.",
	TefINTERNAL:                "An internal error occurred while applying the transaction.",
	TemMALFORMED:               "The transaction is malformed.",
	TemBAD_SRC_ACCOUNT:         "The source account is missing or invalid.",
	TemINVALID:                 "The transaction is invalid.",
	TemTOO_MANY_TEAMS:          "The roster has too many teams.",
	TemTEAM_TOO_LARGE:          "A team has too many players.",
	TemEMPTY_TEAM:              "A team has no players.",
	TemTEAM_LENGTH_MISMATCH:    "Teams do not all have the same length.",
	TemDUPLICATE_PLAYER:        "A player appears more than once in the roster.",
	TemFEE_TOO_HIGH:            "The fee basis points exceed the allowed maximum.",
	TemBAD_AMOUNT:              "The amount is missing or out of range.",
}

// String returns the canonical code name.
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(r))
}

// Message returns a human-readable description of the result.
func (r Result) Message() string {
	if msg, ok := resultMessages[r]; ok {
		return msg
	}
	return "Unknown result code."
}

// IsSuccess reports whether the transaction applied.
func (r Result) IsSuccess() bool { return r == TesSUCCESS }

// IsTec reports whether the result is a state rejection.
func (r Result) IsTec() bool { return r >= 100 && r < 200 }

// IsTef reports whether the result is a tef failure.
func (r Result) IsTef() bool { return r >= -199 && r <= -100 }

// IsTem reports whether the result is a malformed-input rejection.
func (r Result) IsTem() bool { return r >= -299 && r <= -200 }

// Category maps the code onto the caller-facing error taxonomy.
func (r Result) Category() Category {
	switch {
	case r.IsSuccess():
		return CategorySuccess
	case r.IsTem():
		return CategoryValidation
	case r == TefNO_AUTHORITY:
		return CategoryAuthorization
	case r.IsTec():
		return CategoryState
	default:
		return CategoryInternal
	}
}

// String returns the taxonomy name of the category.
func (c Category) String() string {
	switch c {
	case CategorySuccess:
		return "Success"
	case CategoryValidation:
		return "ValidationError"
	case CategoryAuthorization:
		return "AuthorizationError"
	case CategoryState:
		return "StateError"
	default:
		return "InternalError"
	}
}

// ResultError carries a result code through a Validate() error return so the
// engine can surface the precise code instead of a generic temMALFORMED.
type ResultError struct {
	Result Result
	Msg    string
}

// Error implements the error interface.
func (e *ResultError) Error() string {
	if e.Msg == "" {
		return e.Result.String() + ": " + e.Result.Message()
	}
	return e.Result.String() + ": " + e.Msg
}

// NewResultError creates a ResultError with the given code and message.
func NewResultError(r Result, msg string) *ResultError {
	return &ResultError{Result: r, Msg: msg}
}
