package entity

// CodePattern is one extension-scoped regex used by framework code-pattern
// detection (spec.md §4.3, "code-pattern hits").
type CodePattern struct {
	Extensions []string `yaml:"extensions"`
	Pattern    string   `yaml:"pattern"`
}

// FrameworkRule enumerates the three detection kinds for one framework:
// manifest-dependency substrings, exact config filenames, and code patterns.
type FrameworkRule struct {
	Name          string        `yaml:"name"`
	ManifestFiles []string      `yaml:"manifest_files"`
	Dependencies  []string      `yaml:"dependencies"`
	ConfigFiles   []string      `yaml:"config_files"`
	CodePatterns  []CodePattern `yaml:"code_patterns"`
}
