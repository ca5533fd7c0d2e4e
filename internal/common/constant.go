// Package common contains shared constants and sentinel errors used across
// SrefHub components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// Profile tiers.
const (
	TierMiner     = "miner"
	TierCollector = "collector"
	TierAdmin     = "admin"
)

// Waitlist statuses. A profile is never "rejected"; that status only exists
// on the waitlist entry itself.
const (
	WaitlistNone     = "none"
	WaitlistPending  = "pending"
	WaitlistApproved = "approved"
	WaitlistRejected = "rejected"
)
