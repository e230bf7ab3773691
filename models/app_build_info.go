// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "fmt"

// notAvailable is reported for build fields the linker did not set.
const notAvailable = "N/A"

// AppBuildInfo is the version metadata linked into the server binary with
// -ldflags "-X main.buildVersion=...".
type AppBuildInfo struct {
	buildVersion string
	buildDate    string
	buildCommit  string
}

// NewAppBuildInfo returns build info with empty fields reported as "N/A".
func NewAppBuildInfo(buildVersion, buildDate, buildCommit string) AppBuildInfo {
	return AppBuildInfo{
		buildVersion: orNotAvailable(buildVersion),
		buildDate:    orNotAvailable(buildDate),
		buildCommit:  orNotAvailable(buildCommit),
	}
}

func (a AppBuildInfo) BuildVersion() string { return a.buildVersion }
func (a AppBuildInfo) BuildDate() string    { return a.buildDate }
func (a AppBuildInfo) BuildCommit() string  { return a.buildCommit }

// String implements fmt.Stringer: "version (commit, date)".
func (a AppBuildInfo) String() string {
	return fmt.Sprintf("%s (%s, %s)", a.BuildVersion(), a.BuildCommit(), a.BuildDate())
}

func orNotAvailable(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
