package repository

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"textorigin/internal/models"
)

// DefaultSeed is the corpus a fresh installation starts with.
func DefaultSeed() []models.Sample {
	human := []string{
		"Gestern war ich mit meinem Hund im Wald, und er hat sich natürlich direkt im Schlamm gewälzt.",
		"Ehrlich gesagt hab ich keine Ahnung, wie man diese Steuererklärung ausfüllen soll. Hilfe!",
		"Oma hat heute wieder ihren berühmten Apfelkuchen gebacken, der schmeckt einfach nach Kindheit.",
		"Der Bus kam mal wieder zwanzig Minuten zu spät, und natürlich hat es geregnet.",
		"Ich hab das Buch in zwei Nächten durchgelesen, das Ende hat mich echt fertig gemacht.",
	}
	ai := []string{
		"Künstliche Intelligenz bietet zahlreiche Möglichkeiten, Prozesse in Unternehmen effizienter zu gestalten.",
		"Zusammenfassend lässt sich sagen, dass eine ausgewogene Ernährung einen wesentlichen Beitrag zur Gesundheit leistet.",
		"Es ist wichtig zu beachten, dass der Klimawandel vielfältige Auswirkungen auf Ökosysteme weltweit hat.",
		"Die Digitalisierung eröffnet neue Perspektiven und stellt gleichzeitig wichtige Herausforderungen für die Gesellschaft dar.",
		"Darüber hinaus spielt die kontinuierliche Weiterbildung eine entscheidende Rolle für den beruflichen Erfolg.",
	}
	out := make([]models.Sample, 0, len(human)+len(ai))
	for _, t := range human {
		out = append(out, models.Sample{Text: t, Label: models.LabelHuman})
	}
	for _, t := range ai {
		out = append(out, models.Sample{Text: t, Label: models.LabelAI})
	}
	return out
}

type seedEntry struct {
	Text  string `yaml:"text"`
	Label string `yaml:"label"`
}

// LoadSeedFile reads a YAML list of {text, label} entries.
func LoadSeedFile(path string) ([]models.Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var entries []seedEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	out := make([]models.Sample, 0, len(entries))
	for i, e := range entries {
		label, ok := models.ParseLabel(e.Label)
		if !ok {
			return nil, fmt.Errorf("seed entry %d: invalid label %q", i, e.Label)
		}
		if e.Text == "" {
			return nil, fmt.Errorf("seed entry %d: empty text", i)
		}
		out = append(out, models.Sample{Text: e.Text, Label: label})
	}
	return out, nil
}
