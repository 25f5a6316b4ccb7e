package classifier

import "textorigin/internal/models"

func corpus() []models.Sample {
	human := []string{
		"Ich war heute echt mal wieder im Park und hab die Enten gefüttert, war schön.",
		"Boah, der Zug kam schon wieder zu spät, ich hab echt keinen Bock mehr.",
		"Hab gestern mal Lasagne gemacht, war okay aber zu salzig lol.",
		"Keine Ahnung warum, aber ich mag den Regen irgendwie echt gern.",
		"Mein Handy ist mal wieder runtergefallen, Display hat jetzt nen Sprung.",
	}
	ai := []string{
		"Zudem ist es wichtig zu betonen, dass nachhaltige Mobilität insgesamt zahlreiche Vorteile bietet.",
		"Insgesamt lässt sich festhalten, dass die Digitalisierung wichtige Chancen und Herausforderungen mit sich bringt.",
		"Es ist wichtig, verschiedene Perspektiven zu berücksichtigen, um zudem eine fundierte Entscheidung zu treffen.",
		"Zusammenfassend bietet künstliche Intelligenz insgesamt vielfältige Möglichkeiten für Unternehmen.",
		"Darüber hinaus ist es wichtig, zudem die ethischen Aspekte dieser Technologien zu berücksichtigen.",
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
