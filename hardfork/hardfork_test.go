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

package hardfork

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testnetSchedule() Schedule {
	return Schedule{
		{Height: 0, Version: V3, Changelog: "genesis"},
		{Height: 10, Version: V3, Changelog: "no-op activation", VersionRequirement: ">=1.0.0"},
	}
}

func TestGetHardForkAtHeight(t *testing.T) {
	s := testnetSchedule()
	require.Equal(t, uint64(0), s.GetHardForkAtHeight(0).Height)
	require.Equal(t, uint64(0), s.GetHardForkAtHeight(5).Height)
	require.Equal(t, uint64(10), s.GetHardForkAtHeight(10).Height)
	require.Equal(t, uint64(10), s.GetHardForkAtHeight(50).Height)
}

func TestHasHardForkAtHeight(t *testing.T) {
	s := testnetSchedule()

	ok, v := s.HasHardForkAtHeight(0)
	require.True(t, ok)
	require.Equal(t, V3, v)

	ok, v = s.HasHardForkAtHeight(1)
	require.False(t, ok)
	require.Equal(t, V3, v)

	ok, v = s.HasHardForkAtHeight(5)
	require.False(t, ok)
	require.Equal(t, V3, v)

	ok, v = s.HasHardForkAtHeight(6)
	require.False(t, ok)
	require.Equal(t, V3, v)
}

func TestHasHardForkAtHeightEmptySchedule(t *testing.T) {
	var s Schedule
	ok, v := s.HasHardForkAtHeight(0)
	require.False(t, ok)
	require.Equal(t, V0, v)
}

func TestVersionMatchingRequirement(t *testing.T) {
	cases := []struct {
		version string
		req     string
		want    bool
	}{
		{"1.0.0-abcdef", ">=1.0.0", true},
		{"1.0.0-999", ">=1.0.0", true},
		{"1.0.0-abcdef999", ">=1.0.0", true},
		{"1.0.0", ">=1.0.1", false},
		{"1.0.0", "<1.0.1", true},
		{"1.0.0", "<1.0.0", false},
	}
	for _, c := range cases {
		ok, err := IsVersionMatchingRequirement(c.version, c.req)
		require.NoError(t, err)
		require.Equal(t, c.want, ok, "version=%s req=%s", c.version, c.req)
	}
}

func TestIsVersionAllowedAtHeight(t *testing.T) {
	s := testnetSchedule()

	ok, err := s.IsVersionAllowedAtHeight(0, "1.0.0")
	require.NoError(t, err)
	require.True(t, ok) // height 0 predates the versioned requirement

	ok, err = s.IsVersionAllowedAtHeight(10, "0.9.0")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.IsVersionAllowedAtHeight(10, "1.0.0-abcdef")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestIsVersionEnabledAtHeightAlwaysTrue(t *testing.T) {
	s := testnetSchedule()
	require.True(t, s.IsVersionEnabledAtHeight(0, V3))
	require.True(t, s.IsVersionEnabledAtHeight(2_000_000, V2))
	require.True(t, s.IsVersionEnabledAtHeight(2_000_000, V3))
}
