// Package services provides external service integrations and technical concerns like tokens and lookups
package services

import (
	ua "github.com/mileusna/useragent"
)

// UnknownAgent is reported for user-agent fields that cannot be parsed
const UnknownAgent = "Unknown"

// AgentInfo holds the browser and OS details parsed from a user-agent string
type AgentInfo struct {
	Browser        string
	BrowserVersion string
	OS             string
}

// ParseUserAgent extracts browser name/version and OS from a raw user-agent.
// The OS carries its version when the agent reports one ("Windows 10").
// Empty or unparsable fields default to UnknownAgent.
func ParseUserAgent(rawUA string) AgentInfo {
	info := AgentInfo{
		Browser:        UnknownAgent,
		BrowserVersion: UnknownAgent,
		OS:             UnknownAgent,
	}
	if rawUA == "" {
		return info
	}

	parsed := ua.Parse(rawUA)
	if parsed.Name != "" {
		info.Browser = parsed.Name
	}
	if parsed.Version != "" {
		info.BrowserVersion = parsed.Version
	}
	if parsed.OS != "" {
		info.OS = parsed.OS
		if parsed.OSVersion != "" {
			info.OS = parsed.OS + " " + parsed.OSVersion
		}
	}
	return info
}
