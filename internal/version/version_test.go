// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package version

import "testing"

// TestParseSemVer ensures the semantic version parsing works as intended
// including the handling of malformed version strings.
func TestParseSemVer(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantErr bool
		major   uint
		minor   uint
		patch   uint
		preRel  string
		build   string
	}{{
		name:    "release version",
		version: "1.2.3",
		major:   1, minor: 2, patch: 3,
	}, {
		name:    "pre-release version",
		version: "0.1.0-pre",
		minor:   1,
		preRel:  "pre",
	}, {
		name:    "pre-release with build metadata",
		version: "0.1.0-pre+release.local",
		minor:   1,
		preRel:  "pre",
		build:   "release.local",
	}, {
		name:    "leading zero major",
		version: "01.2.3",
		wantErr: true,
	}, {
		name:    "missing patch",
		version: "1.2",
		wantErr: true,
	}, {
		name:    "invalid pre-release char",
		version: "1.2.3-pre_release",
		wantErr: true,
	}}

	for _, test := range tests {
		major, minor, patch, preRel, build, err := parseSemVer(test.version)
		if (err != nil) != test.wantErr {
			t.Errorf("%s: unexpected err -- got %v, want err: %v",
				test.name, err, test.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		if major != test.major || minor != test.minor || patch != test.patch {
			t.Errorf("%s: unexpected components -- got %d.%d.%d, want "+
				"%d.%d.%d", test.name, major, minor, patch, test.major,
				test.minor, test.patch)
		}
		if preRel != test.preRel {
			t.Errorf("%s: unexpected pre-release -- got %q, want %q",
				test.name, preRel, test.preRel)
		}
		if build != test.build {
			t.Errorf("%s: unexpected build metadata -- got %q, want %q",
				test.name, build, test.build)
		}
	}
}

// TestNormalizeString ensures characters outside of the semantic alphabet
// are stripped.
func TestNormalizeString(t *testing.T) {
	if got := NormalizeString("go1.21_linux/amd64"); got != "go1.21linuxamd64" {
		t.Fatalf("unexpected normalized string: %q", got)
	}
}
