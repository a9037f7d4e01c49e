package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gitee.com/czyczk/sbom-asset-transfer/pkg/models/asset"
	log "github.com/sirupsen/logrus"
)

// VerificationPolicy decides what a flow does when a record read back from the ledger fails a check.
type VerificationPolicy int

const (
	// VerificationStrict aborts the flow at the first failed check.
	VerificationStrict VerificationPolicy = iota
	// VerificationLax logs the failed checks and lets the flow run to the end. The flow still reports an error afterwards.
	VerificationLax
)

func (p VerificationPolicy) String() string {
	if p == VerificationLax {
		return "lax"
	}
	return "strict"
}

// ParseVerificationPolicy parses "strict" or "lax". An empty name means `VerificationStrict`.
func ParseVerificationPolicy(name string) (VerificationPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "strict":
		return VerificationStrict, nil
	case "lax":
		return VerificationLax, nil
	default:
		return VerificationStrict, fmt.Errorf("unsupported verification policy '%v'", name)
	}
}

// VerificationFailure describes one field that did not hold the expected value.
type VerificationFailure struct {
	Field    string
	Expected string
	Actual   string
}

func (f VerificationFailure) String() string {
	return fmt.Sprintf("%v: expected %v, got %v", f.Field, f.Expected, f.Actual)
}

// VerificationResult is the outcome of checking one record.
type VerificationResult struct {
	Check    string // What has been checked, e.g. "public asset"
	AssetID  string // The expected asset ID
	Failures []VerificationFailure
}

// Passed reports whether every field held the expected value.
func (r *VerificationResult) Passed() bool {
	return len(r.Failures) == 0
}

func (r *VerificationResult) fail(field, expected, actual string) {
	r.Failures = append(r.Failures, VerificationFailure{Field: field, Expected: expected, Actual: actual})
	log.WithFields(log.Fields{
		"assetID":  r.AssetID,
		"check":    r.Check,
		"field":    field,
		"expected": expected,
		"actual":   actual,
	}).Error("Verification failed")
}

func (r *VerificationResult) String() string {
	if r.Passed() {
		return fmt.Sprintf("%v of '%v' passed", r.Check, r.AssetID)
	}

	failures := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		failures[i] = f.String()
	}
	return fmt.Sprintf("%v of '%v' failed (%v)", r.Check, r.AssetID, strings.Join(failures, "; "))
}

// VerifyAssetPublic checks the response of "ReadAsset". The owner only needs to contain `expectedOwnerSubstring` since the chaincode stores the whole client identity. The appraised value is only checked if an expected one is given.
func VerifyAssetPublic(resp []byte, expectedID, expectedOwnerSubstring string, expectedAppraisedValue *int) *VerificationResult {
	result := &VerificationResult{Check: "public asset", AssetID: expectedID}

	if len(resp) == 0 {
		result.fail("response", "an asset", "an empty response")
		return result
	}

	var a asset.Asset
	if err := json.Unmarshal(resp, &a); err != nil {
		result.fail("response", "an asset in JSON", fmt.Sprintf("unparsable data (%v)", err))
		return result
	}

	if a.AssetID != expectedID {
		result.fail("assetID", quote(expectedID), quote(a.AssetID))
	}

	if !strings.Contains(a.Owner, expectedOwnerSubstring) {
		result.fail("owner", "an owner containing "+quote(expectedOwnerSubstring), quote(a.Owner))
	}

	if expectedAppraisedValue != nil {
		if a.AppraisedValue == nil {
			result.fail("appraisedValue", strconv.Itoa(*expectedAppraisedValue), "nothing")
		} else if *a.AppraisedValue != *expectedAppraisedValue {
			result.fail("appraisedValue", strconv.Itoa(*expectedAppraisedValue), strconv.Itoa(*a.AppraisedValue))
		}
	}

	if result.Passed() {
		log.WithField("assetID", expectedID).Infof("Asset '%v' is owned by '%v'", a.AssetID, a.Owner)
	}

	return result
}

// VerifyAssetPrivate checks the response of "ReadAssetPrivateDetails". The payload is only checked if an expected one is given and must match byte for byte.
func VerifyAssetPrivate(resp []byte, expectedID, expectedPayload string) *VerificationResult {
	result := &VerificationResult{Check: "private details", AssetID: expectedID}

	if len(resp) == 0 {
		result.fail("response", "private details", "an empty response")
		return result
	}

	var details asset.AssetPrivateDetails
	if err := json.Unmarshal(resp, &details); err != nil {
		result.fail("response", "private details in JSON", fmt.Sprintf("unparsable data (%v)", err))
		return result
	}

	if details.AssetID != expectedID {
		result.fail("assetID", quote(expectedID), quote(details.AssetID))
	}

	if expectedPayload != "" && details.SBOM != expectedPayload {
		result.fail("sbom", quote(expectedPayload), quote(details.SBOM))
	}

	return result
}

func quote(s string) string {
	return "'" + s + "'"
}

// VerificationError is returned by a flow in which some record failed a check. `TransactionID` is set if the flow got to submit its transaction.
type VerificationError struct {
	TransactionID string
	Results       []*VerificationResult
}

func (e *VerificationError) Error() string {
	failed := make([]string, 0, len(e.Results))
	for _, r := range e.Results {
		failed = append(failed, r.String())
	}

	msg := "verification failed: " + strings.Join(failed, ", ")
	if e.TransactionID != "" {
		msg += fmt.Sprintf(" (transaction '%v')", e.TransactionID)
	}
	return msg
}

// verificationRecorder applies a policy to the results of a flow.
type verificationRecorder struct {
	policy VerificationPolicy
	failed []*VerificationResult
}

// record keeps a failed result. It returns an error if the flow must stop here.
func (v *verificationRecorder) record(result *VerificationResult, txID string) error {
	if result.Passed() {
		return nil
	}

	v.failed = append(v.failed, result)
	if v.policy == VerificationStrict {
		return &VerificationError{TransactionID: txID, Results: v.failed}
	}
	return nil
}

// err returns the error for the flow if anything failed.
func (v *verificationRecorder) err(txID string) error {
	if len(v.failed) == 0 {
		return nil
	}
	return &VerificationError{TransactionID: txID, Results: v.failed}
}
