package scanner

// extensionLanguages maps a lower-cased dot-prefixed extension to a human
// language label, used to build the per-scan language histogram. Extensions
// not present here bucket into "Other" (spec.md §4.3).
var extensionLanguages = map[string]string{
	".go":    "Go",
	".py":    "Python",
	".js":    "JavaScript",
	".jsx":   "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".java":  "Java",
	".kt":    "Kotlin",
	".rb":    "Ruby",
	".php":   "PHP",
	".cs":    "C#",
	".c":     "C",
	".h":     "C",
	".cpp":   "C++",
	".cc":    "C++",
	".hpp":   "C++",
	".rs":    "Rust",
	".swift": "Swift",
	".m":     "Objective-C",
	".scala": "Scala",
	".sh":    "Shell",
	".ps1":   "PowerShell",
	".sql":   "SQL",
	".yml":   "YAML",
	".yaml":  "YAML",
	".json":  "JSON",
	".xml":   "XML",
	".html":  "HTML",
	".css":   "CSS",
	".tf":    "Terraform",
}

const otherLanguage = "Other"

func languageForExtension(ext string) string {
	if lang, ok := extensionLanguages[ext]; ok {
		return lang
	}
	return otherLanguage
}
