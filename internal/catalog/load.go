package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed content/*.yaml
var content embed.FS

type questFile struct {
	Quests []QuestTemplate `yaml:"quests"`
}

type shopFile struct {
	Items []ShopItem `yaml:"items"`
}

type skillFile struct {
	Trees []SkillTree `yaml:"trees"`
}

type avatarFile struct {
	Layers []AvatarLayer `yaml:"layers"`
}

type themeFile struct {
	Themes []Theme `yaml:"themes"`
}

type battleFile struct {
	Battles []Battle `yaml:"battles"`
}

type onboardingFile struct {
	Steps []OnboardingStep `yaml:"steps"`
}

type subjectFile struct {
	Subjects []string `yaml:"subjects"`
}

// LoadDefault returns the catalog built into the binary.
func LoadDefault() (*Catalog, error) {
	sub, err := fs.Sub(content, "content")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// LoadDir loads the catalog with per-file overrides from dir. Any table whose
// file is absent from dir comes from the built-in content.
func LoadDir(dir string) (*Catalog, error) {
	if dir == "" {
		return LoadDefault()
	}
	st, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("content dir: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("content dir %s is not a directory", dir)
	}
	builtin, err := fs.Sub(content, "content")
	if err != nil {
		return nil, err
	}
	return Load(overlayFS{top: os.DirFS(dir), base: builtin})
}

// Load reads every table from fsys and validates the result.
func Load(fsys fs.FS) (*Catalog, error) {
	var (
		subjects   subjectFile
		quests     questFile
		shop       shopFile
		skills     skillFile
		avatars    avatarFile
		themes     themeFile
		battles    battleFile
		onboarding onboardingFile
	)
	files := []struct {
		name string
		dst  any
	}{
		{"subjects.yaml", &subjects},
		{"quests.yaml", &quests},
		{"shop.yaml", &shop},
		{"skills.yaml", &skills},
		{"avatars.yaml", &avatars},
		{"themes.yaml", &themes},
		{"battles.yaml", &battles},
		{"onboarding.yaml", &onboarding},
	}
	for _, f := range files {
		if err := decodeFile(fsys, f.name, f.dst); err != nil {
			return nil, err
		}
	}

	c := &Catalog{
		Subjects:   subjects.Subjects,
		Quests:     quests.Quests,
		Items:      shop.Items,
		Trees:      skills.Trees,
		Avatar:     avatars.Layers,
		Themes:     themes.Themes,
		Battles:    battles.Battles,
		Onboarding: onboarding.Steps,
	}
	c.index()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return c, nil
}

func decodeFile(fsys fs.FS, name string, dst any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

type overlayFS struct {
	top  fs.FS
	base fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.top.Open(name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return o.base.Open(name)
}
