package goRelier

import "errors"

var (
	// ErrBrokerNotReady is an exported constant or variable used by the flow-completion broker.
	ErrBrokerNotReady = errors.New("broker not ready")
	// ErrFlowNotPrepared is an exported constant or variable used by the flow-completion broker.
	ErrFlowNotPrepared = errors.New("flow not prepared")
	// ErrRelierChannelMissing is an exported constant or variable used by the flow-completion broker.
	ErrRelierChannelMissing = errors.New("relier channel id missing")
	// ErrAuthorizationFailed is an exported constant or variable used by the flow-completion broker.
	ErrAuthorizationFailed = errors.New("authorization failed")
	// ErrKeyFetchFailed is an exported constant or variable used by the flow-completion broker.
	ErrKeyFetchFailed = errors.New("relier key fetch failed")
	// ErrKeyDerivationFailed is an exported constant or variable used by the flow-completion broker.
	ErrKeyDerivationFailed = errors.New("relier key derivation failed")
	// ErrKeyCapabilityMissing is an exported constant or variable used by the flow-completion broker.
	ErrKeyCapabilityMissing = errors.New("key capability not configured")
	// ErrFlowStateInvalid is an exported constant or variable used by the flow-completion broker.
	ErrFlowStateInvalid = errors.New("flow state token invalid")
)
