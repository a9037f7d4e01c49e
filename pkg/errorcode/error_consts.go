package errorcode

import "fmt"

const (
	// CodeNotFound means the requested resource does not exist. An error from the chaincode ending with it is a "not found" rather than a chaincode failure.
	CodeNotFound = "~NOTFOUND~"
	// CodeForbidden means the arguments are understood but the caller is not allowed to perform the operation.
	CodeForbidden = "~FORBIDDEN~"
	// CodeNotImplemented marks a feature that is not available in the current setup.
	CodeNotImplemented = "~NOTIMPLEMENTED~"
)

// ErrorNotFound is the error instance using `CodeNotFound`
var ErrorNotFound = fmt.Errorf(CodeNotFound)

// ErrorForbidden is the error instance using `CodeForbidden`
var ErrorForbidden = fmt.Errorf(CodeForbidden)

// ErrorNotImplemented is the error instance using `CodeNotImplemented`
var ErrorNotImplemented = fmt.Errorf(CodeNotImplemented)
