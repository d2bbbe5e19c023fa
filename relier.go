package goRelier

import (
	"net/url"
	"strconv"
	"strings"
)

// Query parameters the relier supplies at flow start. The presence of a
// verification code distinguishes "this load is the out-of-band verification
// continuation" from "this load is the flow's initial request".
const (
	paramWebChannelID = "webChannelId"
	paramWantsKeys    = "keys"
	paramCode         = "code"
	paramService      = "service"
)

// Relier describes the third-party application that initiated the flow and
// will receive the completion notification.
type Relier struct {
	ChannelID        string
	WantsKeys        bool
	VerificationCode string
	Service          string
}

// ParseRelier describes the parserelier operation and its observable behavior.
//
// ParseRelier may return an error when input validation, dependency calls, or security checks fail.
// ParseRelier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ParseRelier(query url.Values) *Relier {
	relier := &Relier{
		ChannelID:        strings.TrimSpace(query.Get(paramWebChannelID)),
		VerificationCode: strings.TrimSpace(query.Get(paramCode)),
		Service:          strings.TrimSpace(query.Get(paramService)),
	}

	if raw := query.Get(paramWantsKeys); raw != "" {
		wants, err := strconv.ParseBool(raw)
		relier.WantsKeys = err == nil && wants
	}

	return relier
}

// IsVerificationFlow reports whether this page load is the out-of-band
// continuation of a flow started elsewhere.
func (r *Relier) IsVerificationFlow() bool {
	return r != nil && r.VerificationCode != ""
}
