package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Law violation codes surfaced by the adjudicator. The values are part of
	// the public contract and map to HTTP 409 at the transport boundary.
	CodeResourceNegative Code = "E001_RESOURCE_NEGATIVE"
	CodeTargetInvalid    Code = "E002_TARGET_INVALID"
	CodeActionImpossible Code = "E003_ACTION_IMPOSSIBLE"
	CodeLogicViolation   Code = "E004_LOGIC_VIOLATION"
	CodeCanonBreach      Code = "E005_CANON_BREACH"

	// Setup errors. These indicate a broken campaign configuration, not a
	// rule breach, and are never candidates for action repair.
	CodeActorNotFound   Code = "ACTOR_NOT_FOUND"
	CodePersonaInvalid  Code = "PERSONA_INVALID"
	CodeWorldInvalid    Code = "WORLD_INVALID"
	CodeProposalInvalid Code = "PROPOSAL_INVALID"

	// Director/decision-process errors.
	CodeDecisionTimeout Code = "DECISION_TIMEOUT"
	CodeDecisionFailed  Code = "DECISION_FAILED"

	// Storage errors.
	CodeNotFound Code = "NOT_FOUND"
)

// LawCodes lists the adjudication violation codes in check order.
var LawCodes = []Code{
	CodeResourceNegative,
	CodeTargetInvalid,
	CodeActionImpossible,
	CodeLogicViolation,
	CodeCanonBreach,
}

// IsLawCode reports whether code is one of the five adjudication violation codes.
func IsLawCode(code Code) bool {
	for _, c := range LawCodes {
		if c == code {
			return true
		}
	}
	return false
}

// GRPCCode maps domain codes to gRPC status codes for the transport boundary.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// FailedPrecondition - the world state or rules disallow the action.
	case CodeResourceNegative,
		CodeTargetInvalid,
		CodeActionImpossible,
		CodeLogicViolation,
		CodeCanonBreach:
		return codes.FailedPrecondition

	// InvalidArgument - malformed inputs.
	case CodePersonaInvalid,
		CodeWorldInvalid,
		CodeProposalInvalid:
		return codes.InvalidArgument

	// NotFound - missing records or actors.
	case CodeActorNotFound,
		CodeNotFound:
		return codes.NotFound

	// DeadlineExceeded - the external decision process timed out.
	case CodeDecisionTimeout:
		return codes.DeadlineExceeded

	default:
		return codes.Internal
	}
}
