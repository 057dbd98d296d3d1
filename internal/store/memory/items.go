package memory

import "enoteca/internal/core"

// DemoItems is the built-in wine list. The ids match the seed migration of
// the SQLite backend.
func DemoItems() []core.Item {
	return []core.Item{
		{ID: "W001", Name: "Prosecco Superiore Valdobbiadene"},
		{ID: "W002", Name: "Franciacorta Brut"},
		{ID: "W003", Name: "Trento DOC Riserva"},
		{ID: "W004", Name: "Lambrusco di Sorbara"},
		{ID: "W005", Name: "Soave Classico"},
		{ID: "W006", Name: "Lugana"},
		{ID: "W007", Name: "Vermentino di Gallura"},
		{ID: "W008", Name: "Verdicchio dei Castelli di Jesi"},
		{ID: "W009", Name: "Fiano di Avellino"},
		{ID: "W010", Name: "Greco di Tufo"},
		{ID: "W011", Name: "Falanghina del Sannio"},
		{ID: "W012", Name: "Gewürztraminer Alto Adige"},
		{ID: "W013", Name: "Friulano Collio"},
		{ID: "W014", Name: "Ribolla Gialla"},
		{ID: "W015", Name: "Etna Bianco"},
		{ID: "W016", Name: "Rosato del Salento"},
		{ID: "W017", Name: "Chiaretto di Bardolino"},
		{ID: "W018", Name: "Chianti Classico"},
		{ID: "W019", Name: "Brunello di Montalcino"},
		{ID: "W020", Name: "Rosso di Montalcino"},
		{ID: "W021", Name: "Vino Nobile di Montepulciano"},
		{ID: "W022", Name: "Barolo"},
		{ID: "W023", Name: "Barbaresco"},
		{ID: "W024", Name: "Barbera d'Asti"},
		{ID: "W025", Name: "Dolcetto d'Alba"},
		{ID: "W026", Name: "Amarone della Valpolicella"},
		{ID: "W027", Name: "Valpolicella Ripasso"},
		{ID: "W028", Name: "Montepulciano d'Abruzzo"},
		{ID: "W029", Name: "Primitivo di Manduria"},
		{ID: "W030", Name: "Nero d'Avola"},
	}
}
