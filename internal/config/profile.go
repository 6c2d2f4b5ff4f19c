package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/docx-mail-merge/internal/types"
)

// MergeProfile is the saved state of one merge: which template and data file
// to use and how template fields map to data columns. Settings left empty
// fall back to the main config.
type MergeProfile struct {
	Template string `yaml:"template" validate:"required"`
	Data     string `yaml:"data" validate:"required"`
	Sheet    string `yaml:"sheet,omitempty"`

	Language        string `yaml:"language,omitempty" validate:"omitempty,oneof=NL US UK"`
	FilePrefix      string `yaml:"file_prefix,omitempty"`
	PrimaryColumn   string `yaml:"primary_column,omitempty"`
	SecondaryColumn string `yaml:"secondary_column,omitempty"`

	Fields       types.FieldMapping  `yaml:"fields"`
	SquareFields []types.SquareField `yaml:"square_fields,omitempty"`
}

// LoadProfile reads a mapping profile. Relative template and data paths are
// resolved against the profile's directory.
func LoadProfile(path string) (*MergeProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var profile MergeProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if err := validate.Struct(&profile); err != nil {
		return nil, fmt.Errorf("%w: profile %s: %s", ErrInvalidConfig, path, describe(err))
	}

	base := filepath.Dir(path)
	profile.Template = resolve(base, profile.Template)
	profile.Data = resolve(base, profile.Data)
	return &profile, nil
}

// SaveProfile writes a mapping profile as YAML.
func SaveProfile(path string, profile *MergeProfile) error {
	data, err := yaml.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
