package dashboard

// fieldLabels maps a logical field name to an ordered list of label synonyms
// as they appear on the developer dashboard across locales. Matching is
// case-insensitive; the first label that matches wins.
type fieldLabels struct {
	field  string
	labels []string
}

var labelSynonyms = []fieldLabels{
	{"title", []string{"title", "name", "item title", "titel", "titre", "タイトル"}},
	{"summary", []string{"summary", "short description", "zusammenfassung", "résumé", "概要"}},
	{"description", []string{"description", "detailed description", "beschreibung", "説明"}},
	{"homepageUrl", []string{"homepage url", "homepage", "official url", "website", "ホームページ"}},
	{"supportUrl", []string{"support url", "support site", "support", "サポート"}},
}

// saveLabels are accessible names for the dashboard's save control, tried in
// order, case-insensitive.
var saveLabels = []string{"save draft", "save", "speichern", "enregistrer", "保存", "下書きを保存"}

// labelsFor returns the synonym list for a logical field name.
func labelsFor(field string) []string {
	for _, fl := range labelSynonyms {
		if fl.field == field {
			return fl.labels
		}
	}
	return nil
}
