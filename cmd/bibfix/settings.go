package main

import (
	"strings"

	"github.com/matsen/bibfix/internal/bibtex"
	"github.com/matsen/bibfix/internal/clean"
	"github.com/matsen/bibfix/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Setting keys, shared by flags, BIBFIX_* variables and the global config.
const (
	keyMaxAuthors    = "max-authors"
	keyAbbreviations = "abbreviations"
	keyManuscript    = "manuscript"
	keyPolicy        = "policy"
	keyAbbreviate    = "abbreviate"
	keyRecaseTitles  = "recase-titles"
	keyFilterCited   = "filter-cited"
	keyEncoding      = "encoding"
)

// EnvPrefix prefixes environment variables, e.g. BIBFIX_MAX_AUTHORS.
const EnvPrefix = "BIBFIX"

// Settings is the effective configuration, as shown by 'config show'.
type Settings struct {
	ConfigFile    string `yaml:"config_file" json:"config_file"`
	MaxAuthors    int    `yaml:"max_authors" json:"max_authors"`
	Abbreviations string `yaml:"abbreviations" json:"abbreviations"`
	Manuscript    string `yaml:"manuscript" json:"manuscript"`
	Policy        string `yaml:"policy,omitempty" json:"policy,omitempty"`
	Encoding      string `yaml:"encoding" json:"encoding"`
	Abbreviate    bool   `yaml:"abbreviate" json:"abbreviate"`
	RecaseTitles  bool   `yaml:"recase_titles" json:"recase_titles"`
	FilterCited   bool   `yaml:"filter_cited" json:"filter_cited"`
}

// loadSettings layers the command's flags over BIBFIX_* variables over the
// global config file over built-in defaults.
func loadSettings(cmd *cobra.Command) (*viper.Viper, error) {
	configPath, _ := cmd.Flags().GetString("config")
	global, err := config.LoadGlobalConfig(configPath)
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		configPath = config.GlobalConfigPath()
	}

	v := viper.New()
	v.Set("config", configPath)

	v.SetDefault(keyMaxAuthors, clean.NoLimit)
	v.SetDefault(keyAbbreviations, config.DefaultAbbreviationsFile)
	v.SetDefault(keyManuscript, config.DefaultManuscriptFile)
	v.SetDefault(keyEncoding, bibtex.DefaultEncoding)
	if global.MaxAuthors != nil {
		v.SetDefault(keyMaxAuthors, *global.MaxAuthors)
	}
	if global.Abbreviations != "" {
		v.SetDefault(keyAbbreviations, global.Abbreviations)
	}
	if global.Manuscript != "" {
		v.SetDefault(keyManuscript, global.Manuscript)
	}
	if global.Policy != "" {
		v.SetDefault(keyPolicy, global.Policy)
	}
	if global.Encoding != "" {
		v.SetDefault(keyEncoding, global.Encoding)
	}
	v.SetDefault(keyAbbreviate, global.Abbreviate)
	v.SetDefault(keyRecaseTitles, global.RecaseTitles)
	v.SetDefault(keyFilterCited, global.FilterCited)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, key := range []string{
		"verbose", keyMaxAuthors, keyAbbreviations, keyManuscript, keyPolicy,
		keyAbbreviate, keyRecaseTitles, keyFilterCited, keyEncoding,
	} {
		if f := cmd.Flags().Lookup(key); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	return v, nil
}

// currentSettings snapshots the effective configuration.
func currentSettings(v *viper.Viper) Settings {
	return Settings{
		ConfigFile:    v.GetString("config"),
		MaxAuthors:    v.GetInt(keyMaxAuthors),
		Abbreviations: v.GetString(keyAbbreviations),
		Manuscript:    v.GetString(keyManuscript),
		Policy:        v.GetString(keyPolicy),
		Encoding:      v.GetString(keyEncoding),
		Abbreviate:    v.GetBool(keyAbbreviate),
		RecaseTitles:  v.GetBool(keyRecaseTitles),
		FilterCited:   v.GetBool(keyFilterCited),
	}
}

// addCleaningFlags registers the flags shared by clean and check.
// Their values are read back through settings.
func addCleaningFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int(keyMaxAuthors, clean.NoLimit, "Keep at most N authors, then 'and others' (-1 keeps all)")
	f.String(keyAbbreviations, config.DefaultAbbreviationsFile, "Abbreviation and capitalization file (JSON)")
	f.String(keyManuscript, config.DefaultManuscriptFile, "LaTeX manuscript scanned by --filter-cited")
	f.String(keyPolicy, "", "YAML file overriding required fields per entry type")
	f.Bool(keyAbbreviate, false, "Replace journal and conference names with abbreviations")
	f.Bool(keyRecaseTitles, false, "Sentence-case titles except protected terms")
	f.Bool(keyFilterCited, false, "Keep only entries cited in the manuscript")
	f.String(keyEncoding, bibtex.DefaultEncoding, "Character encoding of the input and output .bib files")
}
