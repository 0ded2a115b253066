package bump

import (
	"fmt"

	"buildbump/internal/config"
	"buildbump/internal/pattern"
)

// TargetsFor returns the targets enabled by cfg: the platform toggles first,
// then any custom targets in the order they were configured.
func TargetsFor(cfg *config.Config) ([]Target, error) {
	var targets []Target
	if cfg.UpdateIOS {
		targets = append(targets, IOS)
	}
	if cfg.UpdateAndroid {
		targets = append(targets, Android)
	}

	seen := map[string]bool{IOS.Name: true, Android.Name: true}
	outputs := map[string]bool{IOS.Output: true, Android.Output: true}
	paths := map[string]string{IOS.Pattern.Path: IOS.Name, Android.Pattern.Path: Android.Name}
	for _, tc := range cfg.Targets {
		if tc.Name == "" {
			return nil, fmt.Errorf("custom target with path %q has no name", tc.Path)
		}
		if seen[tc.Name] {
			return nil, fmt.Errorf("duplicate target name %q", tc.Name)
		}
		seen[tc.Name] = true

		p, err := pattern.Compile(tc.Path)
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", tc.Name, err)
		}
		if owner, ok := paths[p.Path]; ok {
			return nil, fmt.Errorf("target %s: field %s is already covered by target %s", tc.Name, p.Path, owner)
		}
		paths[p.Path] = tc.Name
		if tc.Output == "" {
			return nil, fmt.Errorf("target %s has no output name", tc.Name)
		}
		if outputs[tc.Output] {
			return nil, fmt.Errorf("target %s: output %q is already in use", tc.Name, tc.Output)
		}
		outputs[tc.Output] = true
		targets = append(targets, Target{Name: tc.Name, Pattern: p, Output: tc.Output})
	}
	return targets, nil
}

// AllTargets returns every known target regardless of the platform toggles.
func AllTargets(cfg *config.Config) ([]Target, error) {
	all := *cfg
	all.UpdateIOS, all.UpdateAndroid = true, true
	return TargetsFor(&all)
}
