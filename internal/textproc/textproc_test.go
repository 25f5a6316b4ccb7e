package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"german umlauts kept", "Über den Bäumen, ÄRGER!", []string{"über", "den", "bäumen", "ärger"}},
		{"punctuation only", "... !!! ???", nil},
		{"symbols removed", "Preis: 5€ + 3$", []string{"preis", "5", "3"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Words(tt.in)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSentences(t *testing.T) {
	t.Parallel()

	assert.Len(t, Sentences("Der Himmel ist blau. Das Gras ist grün! Wirklich?"), 3)
	assert.Len(t, Sentences("ohne Satzzeichen"), 1)
	assert.Len(t, Sentences("Warte… was?"), 2)
	assert.Empty(t, Sentences("  ... "))

	tests := []struct {
		text string
		want []string
	}{
		{"Es kostet 3.5 Euro.", []string{"Es kostet 3.5 Euro."}},
		{"Die Version 1.2.3 ist da.", []string{"Die Version 1.2.3 ist da."}},
		{"Das ist z.B. gut.", []string{"Das ist z.B. gut."}},
		{"Wir kamen um 10.30 Uhr an. Dann gingen wir.", []string{"Wir kamen um 10.30 Uhr an.", "Dann gingen wir."}},
		{"Wirklich?! Ja.", []string{"Wirklich?!", "Ja."}},
		{"Äpfel, Birnen usw.", []string{"Äpfel, Birnen usw."}},
		{"Siehe www.example.org für mehr", []string{"Siehe www.example.org für mehr"}},
	}
	for _, tt := range tests {
		tt := tt
		assert.Equal(t, tt.want, Sentences(tt.text), tt.text)
	}
}

func TestNGrams(t *testing.T) {
	t.Parallel()

	got := NGrams([]string{"a", "b", "c"}, 1, 2)
	assert.Equal(t, []string{"a", "b", "c", "a b", "b c"}, got)
	assert.Equal(t, []string{"a b c"}, NGrams([]string{"a", "b", "c"}, 3, 3))
	assert.Empty(t, NGrams([]string{"a"}, 2, 2))
}
