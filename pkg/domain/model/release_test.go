package model_test

import (
	"errors"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/hotfixer/pkg/domain/model"
	"github.com/m-mizutani/hotfixer/pkg/domain/types"
)

func TestNextPatch(t *testing.T) {
	tests := []struct {
		name   string
		tag    string
		prefix string
		want   types.Version
	}{
		{name: "plain", tag: "1.2.3", want: "1.2.4"},
		{name: "zero", tag: "0.0.0", want: "0.0.1"},
		{name: "large patch", tag: "3.14.159", want: "3.14.160"},
		{name: "prerelease dropped", tag: "1.2.3-rc.1", want: "1.2.4"},
		{name: "build metadata dropped", tag: "1.2.3+build.7", want: "1.2.4"},
		{name: "configured prefix", tag: "v1.2.3", prefix: "v", want: "1.2.4"},
		{name: "prefix configured but absent", tag: "1.2.3", prefix: "v", want: "1.2.4"},
		{name: "long prefix", tag: "release-2.0.9", prefix: "release-", want: "2.0.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := model.NextPatch(tt.tag, tt.prefix)
			gt.NoError(t, err)
			gt.V(t, got).Equal(tt.want)
		})
	}
}

func TestNextPatch_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		tag    string
		prefix string
	}{
		{name: "empty", tag: ""},
		{name: "two components", tag: "1.2"},
		{name: "prefix not configured", tag: "v1.2.3"},
		{name: "text", tag: "latest"},
		{name: "leading zero", tag: "01.2.3"},
		{name: "patch overflows", tag: "1.2.18446744073709551615"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := model.NextPatch(tt.tag, tt.prefix)
			gt.Error(t, err)
			gt.V(t, errors.Is(err, types.ErrVersionResolution)).Equal(true)
		})
	}
}

func TestNextPatch_StrictlyGreaterSameMinor(t *testing.T) {
	for major := uint64(0); major < 3; major++ {
		for minor := uint64(0); minor < 4; minor++ {
			for patch := uint64(0); patch < 12; patch++ {
				src := semver.New(major, minor, patch, "", "")
				next, err := model.NextPatch(src.String(), "")
				gt.NoError(t, err)

				got := semver.MustParse(next.String())
				gt.V(t, got.GreaterThan(src)).Equal(true)
				gt.V(t, got.Major()).Equal(major)
				gt.V(t, got.Minor()).Equal(minor)
				gt.V(t, got.Patch()).Equal(patch + 1)
			}
		}
	}
}
