package integration

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rony4d/go-opera-glutton/glutton"
	"github.com/rony4d/go-opera-glutton/inter"
)

// Package integration provides named load profiles for the glutton pallet.
// A profile bundles the two waste fractions (and the trash table size the
// reads need) so operators can put a network under a known, repeatable load
// without working out fractions by hand.
//
// Usage:
//   profile, err := integration.GetProfileByName("half")
//   err = integration.ApplyProfile(pallet, profile)
//
// Profiles are applied through the root-only calls, so every change is
// announced through the pallet's events like a manual one.

// ErrUnknownProfile is returned by GetProfileByName for unrecognized names.
var ErrUnknownProfile = errors.New("unknown profile")

// Profile is a named pallet configuration.
type Profile struct {
	Name         string        // identifier used on the command line
	Compute      inter.Perbill // fraction of the remaining ref time to burn
	Storage      inter.Perbill // fraction of the remaining proof size to burn
	TrashEntries uint32        // trash entries the reads cycle over, 0 keeps the table as is
}

// Target is what a profile is applied to, usually a *glutton.Pallet.
type Target interface {
	InitializePallet(origin glutton.Origin, count uint32) error
	SetCompute(origin glutton.Origin, compute inter.Perbill) error
	SetStorage(origin glutton.Origin, storage inter.Perbill) error
	TrashCount() (uint32, error)
}

// IdleProfile disables wasting. The trash table is left in place.
func IdleProfile() Profile {
	return Profile{Name: "idle"}
}

// LightProfile burns a tenth of every idle slot, enough to notice in block
// metrics without slowing anything down.
func LightProfile() Profile {
	return Profile{
		Name:         "light",
		Compute:      inter.FromPercent(10),
		Storage:      inter.FromPercent(10),
		TrashEntries: 1_000,
	}
}

// HalfProfile burns half of every idle slot.
func HalfProfile() Profile {
	return Profile{
		Name:         "half",
		Compute:      inter.FromPercent(50),
		Storage:      inter.FromPercent(50),
		TrashEntries: 5_000,
	}
}

// SaturateProfile burns every idle slot completely. Use it to find out how a
// network behaves with full blocks.
//
// The trash table is filled up to its calibrated ceiling so reads are priced
// the way they were measured.
func SaturateProfile() Profile {
	return Profile{
		Name:         "saturate",
		Compute:      inter.One(),
		Storage:      inter.One(),
		TrashEntries: glutton.MaxTrashDataEntries,
	}
}

// ComputeOnlyProfile burns all idle ref time and no proof size.
func ComputeOnlyProfile() Profile {
	return Profile{
		Name:    "compute-only",
		Compute: inter.One(),
	}
}

var profiles = map[string]func() Profile{
	"idle":         IdleProfile,
	"light":        LightProfile,
	"half":         HalfProfile,
	"saturate":     SaturateProfile,
	"compute-only": ComputeOnlyProfile,
}

// Profiles returns the names of all known profiles, sorted.
func Profiles() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetProfileByName looks up a profile by its identifier, so flags like
// --profile=half can select one.
func GetProfileByName(name string) (Profile, error) {
	mk, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownProfile, name, strings.Join(Profiles(), ", "))
	}
	return mk(), nil
}

// ApplyProfile configures target as root. The trash table is only initialized
// when the profile asks for more entries than target already has, since
// re-initialization rewrites every entry.
func ApplyProfile(target Target, profile Profile) error {
	if profile.TrashEntries > 0 {
		count, err := target.TrashCount()
		if err != nil {
			return fmt.Errorf("profile %s: %w", profile.Name, err)
		}
		if count < profile.TrashEntries {
			if err := target.InitializePallet(glutton.RootOrigin, profile.TrashEntries); err != nil {
				return fmt.Errorf("profile %s: %w", profile.Name, err)
			}
		}
	}
	if err := target.SetCompute(glutton.RootOrigin, profile.Compute); err != nil {
		return fmt.Errorf("profile %s: %w", profile.Name, err)
	}
	if err := target.SetStorage(glutton.RootOrigin, profile.Storage); err != nil {
		return fmt.Errorf("profile %s: %w", profile.Name, err)
	}
	return nil
}
