// Package voices holds the static catalog of voices per speech model.
package voices

const (
	ModelEnglish = "playai-tts"
	ModelArabic  = "playai-tts-arabic"
	DefaultModel = ModelEnglish
)

var (
	english = []string{
		"Arista-PlayAI", "Atlas-PlayAI", "Basil-PlayAI", "Briggs-PlayAI",
		"Calum-PlayAI", "Celeste-PlayAI", "Cheyenne-PlayAI", "Chip-PlayAI",
		"Cillian-PlayAI", "Deedee-PlayAI", "Fritz-PlayAI", "Gail-PlayAI",
		"Indigo-PlayAI", "Mamaw-PlayAI", "Mason-PlayAI", "Mikail-PlayAI",
		"Mitch-PlayAI", "Quinn-PlayAI", "Thunder-PlayAI",
	}
	arabic = []string{
		"Ahmad-PlayAI", "Amira-PlayAI", "Khalid-PlayAI", "Nasser-PlayAI",
	}
)

// Catalog is the shape in which voice lists are exchanged over HTTP.
type Catalog struct {
	English []string `json:"english"`
	Arabic  []string `json:"arabic"`
}

func Models() []string {
	return []string{ModelEnglish, ModelArabic}
}

func IsKnownModel(model string) bool {
	return model == ModelEnglish || model == ModelArabic
}

// ForModel returns the voices of the English model for ModelEnglish and the
// Arabic voices for any other model.
func ForModel(model string) []string {
	if model == ModelEnglish {
		return clone(english)
	}

	return clone(arabic)
}

func All() Catalog {
	return Catalog{
		English: clone(english),
		Arabic:  clone(arabic),
	}
}

func clone(l []string) []string {
	return append(make([]string, 0, len(l)), l...)
}
