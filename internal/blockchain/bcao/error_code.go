package bcao

import (
	"strings"

	"gitee.com/czyczk/sbom-asset-transfer/pkg/errorcode"
	"github.com/pkg/errors"
)

// GetClassifiedError is a general error handler that converts some errors returned from the chaincode to the predefined errors.
func GetClassifiedError(chaincodeFcn string, err error) error {
	if err == nil {
		return nil
	} else if strings.HasSuffix(err.Error(), errorcode.CodeForbidden) {
		return errors.Wrapf(errorcode.ErrorForbidden, "%v", err)
	} else if strings.HasSuffix(err.Error(), errorcode.CodeNotFound) || strings.Contains(err.Error(), "does not exist") {
		return errors.Wrapf(errorcode.ErrorNotFound, "%v", err)
	} else if strings.HasSuffix(err.Error(), errorcode.CodeNotImplemented) {
		return errors.Wrapf(errorcode.ErrorNotImplemented, "%v", err)
	} else {
		return errors.Wrapf(err, "cannot invoke chaincode function '%v'", chaincodeFcn)
	}
}
