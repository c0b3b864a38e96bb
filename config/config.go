// Package config loads the .tskit.yaml project configuration.
//
// The config tells tskit where the .ts catalogs live, which language the
// source texts are written in, and how user-facing language names
// ("Spanish") map to catalog codes ("es"). A missing file means defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = ".tskit.yaml"

// Defaults applied by Load.
const (
	DefaultTranslationsDir = "translations"
	DefaultSourceLang      = "en_US"
)

// Config is the .tskit.yaml structure.
type Config struct {
	// TranslationsDir holds <code>.ts catalogs, relative to the project root.
	TranslationsDir string `yaml:"translations_dir,omitempty"`
	// SourceLang is the language of the source texts.
	SourceLang string `yaml:"source_lang,omitempty"`
	// DefaultLang is used when no language is requested.
	DefaultLang string `yaml:"default_lang,omitempty"`
	// Aliases maps language names to catalog codes, e.g. spanish: es.
	Aliases map[string]string `yaml:"aliases,omitempty"`

	// root is the directory the config was loaded from.
	root string
}

// Default returns the configuration used when no .tskit.yaml exists.
func Default(rootDir string) *Config {
	return &Config{
		TranslationsDir: DefaultTranslationsDir,
		SourceLang:      DefaultSourceLang,
		Aliases: map[string]string{
			"english": "en",
			"spanish": "es",
		},
		root: rootDir,
	}
}

// Load reads .tskit.yaml from rootDir, falling back to Default when the
// file does not exist.
func Load(rootDir string) (*Config, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(rootDir), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := Default(rootDir)
	cfg.Aliases = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if cfg.TranslationsDir == "" {
		cfg.TranslationsDir = DefaultTranslationsDir
	}
	if cfg.SourceLang == "" {
		cfg.SourceLang = DefaultSourceLang
	}
	if _, err := language.Parse(cfg.SourceLang); err != nil {
		return nil, fmt.Errorf("%s: invalid source_lang %q: %w", path, cfg.SourceLang, err)
	}

	aliases := make(map[string]string, len(cfg.Aliases))
	for name, code := range cfg.Aliases {
		if strings.TrimSpace(code) == "" {
			return nil, fmt.Errorf("%s: alias %q has no language code", path, name)
		}
		aliases[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(code)
	}
	cfg.Aliases = aliases
	if len(cfg.Aliases) == 0 {
		cfg.Aliases = Default(rootDir).Aliases
	}
	return cfg, nil
}

// AbsTranslationsDir returns the catalog directory resolved against the root.
func (c *Config) AbsTranslationsDir() string {
	if filepath.IsAbs(c.TranslationsDir) {
		return c.TranslationsDir
	}
	return filepath.Join(c.root, c.TranslationsDir)
}

// CatalogPath returns the .ts file for a language code.
func (c *Config) CatalogPath(code string) string {
	return filepath.Join(c.AbsTranslationsDir(), code+".ts")
}

// LanguageCode maps a preference ("Spanish", "es", "") to a catalog code.
// An empty preference selects DefaultLang.
func (c *Config) LanguageCode(pref string) string {
	pref = strings.TrimSpace(pref)
	if pref == "" {
		pref = c.DefaultLang
	}
	if code, ok := c.Aliases[strings.ToLower(pref)]; ok {
		return code
	}
	return pref
}

// IsSourceLanguage reports whether code names the source language, in
// which case no catalog needs to be loaded. Only base languages are
// compared, so "en" matches "en_US".
func (c *Config) IsSourceLanguage(code string) bool {
	if code == "" {
		return true
	}
	tag, err := language.Parse(code)
	if err != nil {
		return false
	}
	src, err := language.Parse(c.SourceLang)
	if err != nil {
		return false
	}
	a, _ := tag.Base()
	b, _ := src.Base()
	return a == b
}

// DetectLanguages lists the language codes of *.ts files in dir.
func DetectLanguages(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var langs []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".ts") {
			continue
		}
		langs = append(langs, strings.TrimSuffix(name, ".ts"))
	}
	sort.Strings(langs)
	return langs
}
