package config

// GlossaryOverride customizes the glossary section appended to a
// notification. Entries, when present in an override, replace the base
// entries wholesale (no key-by-key append).
type GlossaryOverride struct {
	Enabled *bool             `yaml:"enabled"`
	Title   *string           `yaml:"title"`
	Intro   *string           `yaml:"intro"`
	Entries map[string]string `yaml:"entries"`
}

// ContentOverride is one layer of per-coin notification text. The
// "default" key provides the base; a symbol key overlays it field by
// field, never whole-object.
type ContentOverride struct {
	Title       *string           `yaml:"title"`
	Intro       *string           `yaml:"intro"`
	Outro       *string           `yaml:"outro"`
	CustomLines *[]string         `yaml:"custom_lines"`
	Glossary    *GlossaryOverride `yaml:"glossary"`
}
