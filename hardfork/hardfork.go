// Copyright 2024 The terminos Authors
// This file is part of the terminos library.
//
// The terminos library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The terminos library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the terminos library. If not, see <http://www.gnu.org/licenses/>.

// Package hardfork gates block/transaction version rollout by height:
// a tiny, per-network ordered table maps a height to the protocol
// version active from that point on, plus an optional semver
// constraint gating which peer software versions may participate.
package hardfork

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// BlockVersion is the protocol version a hard fork activates.
type BlockVersion uint8

const (
	V0 BlockVersion = iota
	V1
	V2
	V3
)

// HardFork is one entry in a network's activation schedule.
type HardFork struct {
	Height             uint64
	Version            BlockVersion
	Changelog          string
	VersionRequirement string // semver constraint, empty means "no requirement"
}

// Schedule is a network's ordered, ascending-by-height hard fork
// table. All terminos networks are expected to start with an entry at
// height 0.
type Schedule []HardFork

// GetHardForkAtHeight returns the last entry whose Height <= h, or nil
// if the schedule has no such entry. The schedule is small and sorted,
// so a linear scan is simplest and matches the reference gate.
func (s Schedule) GetHardForkAtHeight(h uint64) *HardFork {
	var found *HardFork
	for i := range s {
		if h >= s[i].Height {
			found = &s[i]
		} else {
			break
		}
	}
	return found
}

// HasHardForkAtHeight reports whether h is exactly the activation
// height of an entry, along with the version active at h (V0 if the
// schedule has no applicable entry).
func (s Schedule) HasHardForkAtHeight(h uint64) (bool, BlockVersion) {
	hf := s.GetHardForkAtHeight(h)
	if hf == nil {
		return false, V0
	}
	return hf.Height == h, hf.Version
}

// GetVersionAtHeight is a convenience wrapper returning just the
// version component of HasHardForkAtHeight.
func (s Schedule) GetVersionAtHeight(h uint64) BlockVersion {
	_, v := s.HasHardForkAtHeight(h)
	return v
}

// IsVersionEnabledAtHeight reports whether version is active at h.
// Every hard fork in terminos unlocks strictly more capability than
// the last, and all released versions are enabled unconditionally
// from genesis (see DESIGN.md for the Open Question this resolves),
// so this never depends on h.
func (s Schedule) IsVersionEnabledAtHeight(h uint64, version BlockVersion) bool {
	return true
}

// stripBuildSuffix drops a trailing "-<suffix>" (e.g. a git commit
// hash appended to a release version) before semver parsing.
func stripBuildSuffix(version string) string {
	if i := strings.IndexByte(version, '-'); i >= 0 {
		return version[:i]
	}
	return version
}

// IsVersionMatchingRequirement reports whether version (with any
// "-suffix" stripped) satisfies the semver constraint req.
func IsVersionMatchingRequirement(version, req string) (bool, error) {
	constraint, err := semver.NewConstraint(req)
	if err != nil {
		return false, err
	}
	v, err := semver.NewVersion(stripBuildSuffix(version))
	if err != nil {
		return false, err
	}
	return constraint.Check(v), nil
}

// IsVersionAllowedAtHeight requires version to satisfy every hard
// fork's VersionRequirement whose Height <= h. All-or-nothing: a
// single failed requirement rejects the version.
func (s Schedule) IsVersionAllowedAtHeight(h uint64, version string) (bool, error) {
	for i := range s {
		hf := &s[i]
		if hf.Height > h || hf.VersionRequirement == "" {
			continue
		}
		ok, err := IsVersionMatchingRequirement(version, hf.VersionRequirement)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
