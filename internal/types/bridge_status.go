package types

import "fmt"

type BridgeStatus string

const (
	Pending   BridgeStatus = "pending"
	Verifying BridgeStatus = "verifying"
	Verified  BridgeStatus = "verified"
	Executing BridgeStatus = "executing"
	Completed BridgeStatus = "completed"
	Failed    BridgeStatus = "failed"
)

func (s BridgeStatus) ToString() string {
	return string(s)
}

func FromStringToBridgeStatus(s string) (BridgeStatus, error) {
	switch s {
	case "pending":
		return Pending, nil
	case "verifying":
		return Verifying, nil
	case "verified":
		return Verified, nil
	case "executing":
		return Executing, nil
	case "completed":
		return Completed, nil
	case "failed":
		return Failed, nil
	default:
		return "", fmt.Errorf("invalid bridge status: %s", s)
	}
}

// FailureStage records which step of the pipeline moved a transaction into the failed state.
type FailureStage string

const (
	VerificationStage FailureStage = "verification"
	DistributionStage FailureStage = "distribution"
)

func (s FailureStage) ToString() string {
	return string(s)
}

// ProofSide selects the inbound (user -> bank) or outbound (bank -> user) payment of a transaction.
type ProofSide string

const (
	Inbound  ProofSide = "inbound"
	Outbound ProofSide = "outbound"
)

func FromStringToProofSide(s string) (ProofSide, error) {
	switch s {
	case "inbound":
		return Inbound, nil
	case "outbound":
		return Outbound, nil
	default:
		return "", fmt.Errorf("invalid proof side: %s", s)
	}
}
