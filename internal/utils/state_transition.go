package utils

import (
	"github.com/xrpbridge/bridge-api-service/internal/types"
)

// QualifiedStatesToVerifying returns the qualified existing states to transition to "verifying".
// A failed record is only eligible when it failed during verification, which is
// checked alongside the failure stage by the db layer.
func QualifiedStatesToVerifying() []types.BridgeStatus {
	return []types.BridgeStatus{types.Pending, types.Verifying, types.Failed}
}

// QualifiedStatesToVerified returns the qualified existing states to transition to "verified"
func QualifiedStatesToVerified() []types.BridgeStatus {
	return []types.BridgeStatus{types.Verifying}
}

// QualifiedStatesToExecuting returns the qualified existing states to transition to "executing"
func QualifiedStatesToExecuting() []types.BridgeStatus {
	return []types.BridgeStatus{types.Verified}
}

// QualifiedStatesToCompleted returns the qualified existing states to transition to "completed"
func QualifiedStatesToCompleted() []types.BridgeStatus {
	return []types.BridgeStatus{types.Executing}
}

// QualifiedStatesToRestart returns the states a distribution restart may start from
func QualifiedStatesToRestart() []types.BridgeStatus {
	return []types.BridgeStatus{types.Failed}
}
