package types

import "fmt"

// Error is the application error type returned to API callers. Code is a
// stable machine-readable identifier, Message the human-readable text.
type Error struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%s", e.Code, e.Message)
}

func New(code int32, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func (e *Error) RefineError(err ...interface{}) *Error {
	return New(e.Code, e.Message+fmt.Sprint(err...))
}

// database layer sentinels
var (
	DbErrNotFound     = New(10001, "not found")
	DbErrSqlOperation = New(10002, "unknown sql operation error")
)

// application errors
var (
	AppErrInvalidParam        = New(20001, "invalid param: ")
	AppErrInvalidArtist       = New(20002, "invalid artist")
	AppErrInvalidEventType    = New(20003, "invalid event type")
	AppErrInvalidMode         = New(20004, "invalid generation mode")
	AppErrNftNotFound         = New(20005, "nft not found")
	AppErrCombinationSoldOut  = New(20006, "combination is not available for minting")
	AppErrAlreadyOnWaitlist   = New(20007, "already on the waitlist for this combination")
	AppErrPromptRequired      = New(20008, "user prompt required for prompt mode")
	AppErrNotEnoughParents    = New(20009, "at least two nfts are required for breeding")
	AppErrInvalidPrincipal    = New(20010, "invalid wallet principal")
	AppErrUnauthorized        = New(20011, "unauthorized")
	AppErrCanisterUnavailable = New(20012, "canister client not available")
	AppErrImageGeneration     = New(20013, "image generation failed")
	AppErrTooManyRequests     = New(20014, "rate limit exceeded")
	AppErrInternal            = New(20015, "internal server error")
)
