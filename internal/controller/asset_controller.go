package controller

import (
	"fmt"
	"net/http"

	"gitee.com/czyczk/sbom-asset-transfer/internal/service"
	"gitee.com/czyczk/sbom-asset-transfer/internal/utils/uploadutils"
	"gitee.com/czyczk/sbom-asset-transfer/pkg/errorcode"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// An AssetController contains a group name and an `AssetService` instance. It also implements the interface `Controller`.
type AssetController struct {
	GroupName string
	AssetSvc  service.AssetServiceInterface
	UploadDir string // Where the uploaded SBOM files are kept
}

// GetGroupName returns the group name.
func (ac *AssetController) GetGroupName() string {
	return ac.GroupName
}

// GetEndpointMap implements part of the interface `Controller`. It returns the API endpoints and handlers which are defined and managed by AssetController.
func (ac *AssetController) GetEndpointMap() EndpointMap {
	return EndpointMap{
		urlMethodPair{"/createAsset", "POST"}:       []gin.HandlerFunc{ac.handleCreateAsset},
		urlMethodPair{"/transferAsset", "POST"}:     []gin.HandlerFunc{ac.handleTransferAsset},
		urlMethodPair{"/asset/:id/records", "GET"}: []gin.HandlerFunc{ac.handleGetAssetRecords},
	}
}

// saveUpload keeps the file of the form field `sbom` in the upload directory and returns its path.
func (ac *AssetController) saveUpload(c *gin.Context) (string, error) {
	fileHeader, err := c.FormFile("sbom")
	if err != nil {
		return "", err
	}

	f, err := fileHeader.Open()
	if err != nil {
		return "", errors.Wrap(err, "cannot open the uploaded file")
	}
	defer f.Close()

	return uploadutils.SaveContentAddressed(ac.UploadDir, f)
}

func (ac *AssetController) handleCreateAsset(c *gin.Context) {
	// Validity check
	pel := &ParameterErrorList{}
	if _, err := c.FormFile("sbom"); err != nil {
		*pel = append(*pel, "An SBOM file must be uploaded as 'sbom'.")
	}

	if len(*pel) > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, pel)
		return
	}

	path, err := ac.saveUpload(c)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	log.WithField("requestId", c.GetString(requestIDKey)).Infof("SBOM saved as '%v'", path)

	assetID, err := ac.AssetSvc.CreateAsset(c.Request.Context(), path)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	c.String(http.StatusOK, fmt.Sprintf("Created asset: %v", assetID))
}

func (ac *AssetController) handleTransferAsset(c *gin.Context) {
	// Validity check
	pel := &ParameterErrorList{}
	assetID := pel.AppendIfEmptyOrBlankSpaces(c.PostForm("assetID"), "Asset ID cannot be empty.")
	orgName := pel.AppendIfEmptyOrBlankSpaces(c.PostForm("OrgName"), "Organization name cannot be empty.")
	if _, err := c.FormFile("sbom"); err != nil {
		*pel = append(*pel, "An SBOM file must be uploaded as 'sbom'.")
	}

	if len(*pel) > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, pel)
		return
	}

	path, err := ac.saveUpload(c)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("%v: %v", assetID, err))
		return
	}
	log.WithField("requestId", c.GetString(requestIDKey)).Infof("SBOM saved as '%v'", path)

	txID, err := ac.AssetSvc.TransferAsset(c.Request.Context(), assetID, orgName, path)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("%v: %v", assetID, err))
		return
	}

	c.String(http.StatusOK, fmt.Sprintf("Transferred asset: %v with transactionId: %v", assetID, txID))
}

func (ac *AssetController) handleGetAssetRecords(c *gin.Context) {
	pel := &ParameterErrorList{}
	assetID := pel.AppendIfEmptyOrBlankSpaces(c.Param("id"), "Asset ID cannot be empty.")

	if len(*pel) > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, pel)
		return
	}

	records, err := ac.AssetSvc.GetAssetRecords(c.Request.Context(), assetID)
	if err == nil {
		c.JSON(http.StatusOK, records)
	} else if errors.Cause(err) == errorcode.ErrorNotFound {
		c.Writer.WriteHeader(http.StatusNotFound)
	} else if errors.Cause(err) == errorcode.ErrorNotImplemented {
		c.Writer.WriteHeader(http.StatusNotImplemented)
	} else {
		c.String(http.StatusInternalServerError, err.Error())
	}
}
