package cli

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ukydev/fleet-dashboard/internal/models"
	"github.com/ukydev/fleet-dashboard/internal/settings"
)

func (a *app) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the saved preferences",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the preferences as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := a.preferences(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(prefs)
		},
	}

	set := &cobra.Command{
		Use:   "set key=value...",
		Short: "Change one or more preferences",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.settingsStore()
			if err != nil {
				return err
			}
			current, err := store.Load(cmd.Context(), "")
			if err != nil {
				return err
			}
			patch, err := settingsPatch(args)
			if err != nil {
				return err
			}
			merged, err := settings.Merge(current, patch)
			if err != nil {
				return err
			}
			if err := store.Save(cmd.Context(), "", merged); err != nil {
				return err
			}
			a.logger.WithField("file", store.Path).Info("Saved settings")
			return nil
		},
	}

	cmd.AddCommand(show, set)
	return cmd
}

// settingsPatch turns key=value pairs into a JSON document, typing each value
// after the default of the same key.
func settingsPatch(pairs []string) ([]byte, error) {
	defaults, err := settingsFields(settings.Defaults())
	if err != nil {
		return nil, err
	}
	patch := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("%w: expected key=value, got %q", settings.ErrInvalidSettings, pair)
		}
		def, known := defaults[key]
		if !known {
			keys := make([]string, 0, len(defaults))
			for k := range defaults {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			return nil, fmt.Errorf("%w: unknown key %q (known: %s)", settings.ErrInvalidSettings, key, strings.Join(keys, ", "))
		}
		switch def.(type) {
		case bool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s must be true or false", settings.ErrInvalidSettings, key)
			}
			patch[key] = b
		case float64:
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s must be a whole number", settings.ErrInvalidSettings, key)
			}
			patch[key] = n
		default:
			patch[key] = raw
		}
	}
	return json.Marshal(patch)
}

func settingsFields(s models.Settings) (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
