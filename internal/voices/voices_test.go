package voices

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForModel(t *testing.T) {
	englishVoices := []string{
		"Arista-PlayAI", "Atlas-PlayAI", "Basil-PlayAI", "Briggs-PlayAI", "Calum-PlayAI",
		"Celeste-PlayAI", "Cheyenne-PlayAI", "Chip-PlayAI", "Cillian-PlayAI", "Deedee-PlayAI",
		"Fritz-PlayAI", "Gail-PlayAI", "Indigo-PlayAI", "Mamaw-PlayAI", "Mason-PlayAI",
		"Mikail-PlayAI", "Mitch-PlayAI", "Quinn-PlayAI", "Thunder-PlayAI",
	}
	arabicVoices := []string{"Ahmad-PlayAI", "Amira-PlayAI", "Khalid-PlayAI", "Nasser-PlayAI"}

	for _, tc := range []struct {
		model    string
		expected []string
	}{
		{model: ModelEnglish, expected: englishVoices},
		{model: ModelArabic, expected: arabicVoices},
		{model: "", expected: arabicVoices},
	} {
		t.Run(tc.model, func(t *testing.T) {
			require.Equal(t, tc.expected, ForModel(tc.model))
		})
	}
}

func TestForModelReturnsCopy(t *testing.T) {
	l := ForModel(ModelEnglish)
	l[0] = "changed"

	require.Equal(t, "Arista-PlayAI", ForModel(ModelEnglish)[0])
	require.Equal(t, "Arista-PlayAI", All().English[0])
}

func TestIsKnownModel(t *testing.T) {
	for _, m := range Models() {
		require.True(t, IsKnownModel(m), m)
	}

	require.False(t, IsKnownModel("whisper-large-v3"))
}
