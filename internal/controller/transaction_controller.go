package controller

import (
	"net/http"

	"gitee.com/czyczk/sbom-asset-transfer/internal/networkinfo"
	"gitee.com/czyczk/sbom-asset-transfer/internal/service"
	"gitee.com/czyczk/sbom-asset-transfer/pkg/errorcode"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// A TransactionController looks up transactions on the ledger. It implements the interface `Controller`.
type TransactionController struct {
	GroupName string
	AssetSvc  service.AssetServiceInterface
}

// GetGroupName returns the group name.
func (tc *TransactionController) GetGroupName() string {
	return tc.GroupName
}

// GetEndpointMap implements part of the interface `Controller`.
func (tc *TransactionController) GetEndpointMap() EndpointMap {
	return EndpointMap{
		urlMethodPair{"/transaction/:id", "GET"}: []gin.HandlerFunc{tc.handleGetTransaction},
	}
}

func (tc *TransactionController) handleGetTransaction(c *gin.Context) {
	pel := &ParameterErrorList{}
	txID := pel.AppendIfEmptyOrBlankSpaces(c.Param("id"), "Transaction ID cannot be empty.")

	// The organization is optional and defaults to the seller
	orgName := c.Query("orgName")
	if orgName != "" {
		if _, err := networkinfo.NewOrgFromString(orgName); err != nil {
			*pel = append(*pel, "Unsupported organization.")
		}
	}

	if len(*pel) > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, pel)
		return
	}

	info, err := tc.AssetSvc.GetTransaction(c.Request.Context(), orgName, txID)
	if err == nil {
		c.JSON(http.StatusOK, info)
	} else if errors.Cause(err) == errorcode.ErrorNotFound {
		c.Writer.WriteHeader(http.StatusNotFound)
	} else if networkinfo.IsUnsupportedOrg(err) {
		c.String(http.StatusBadRequest, err.Error())
	} else {
		c.String(http.StatusInternalServerError, err.Error())
	}
}
