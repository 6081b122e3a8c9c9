package upload

import (
	"errors"
	"net/http"
)

// ErrNoFile is returned when the request carries no file under the upload field.
var ErrNoFile = errors.New("no file uploaded")

// Error codes carried by *Error.
const (
	CodeInvalidFileType = "INVALID_FILE_TYPE"
	CodeFileTooLarge    = "LIMIT_FILE_SIZE"
	CodeUnexpectedField = "LIMIT_UNEXPECTED_FILE"
	CodeFieldTooLong    = "LIMIT_FIELD_VALUE"
	CodeMalformedBody   = "MALFORMED_BODY"
)

// Error is an acceptance failure caused by the client's request.
// Handlers answer it with 400.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	errInvalidType = &Error{
		Code:    CodeInvalidFileType,
		Message: "Invalid file type. Only video and image files are allowed.",
	}
	errTooLarge = &Error{
		Code:    CodeFileTooLarge,
		Message: "File too large",
	}
	errUnexpectedField = &Error{
		Code:    CodeUnexpectedField,
		Message: "Unexpected field",
	}
	errFieldTooLong = &Error{
		Code:    CodeFieldTooLong,
		Message: "Field value too long",
	}
)

// readError classifies a failure while reading the request body outside the
// file part. Running out of body there means the text fields alone used up the
// form allowance.
func readError(err error) *Error {
	if bodyExhausted(err) {
		return errFieldTooLong
	}
	return &Error{Code: CodeMalformedBody, Message: "Malformed multipart body: " + err.Error()}
}

// bodyExhausted reports whether err comes from the request body limit.
func bodyExhausted(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
