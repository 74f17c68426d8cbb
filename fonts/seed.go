package fonts

// DefaultSeedTable maps families to visually similar families, scanned
// in order when the primary and fallback families cannot satisfy a
// weight request. The table is a seed: the category scan extends it
// dynamically from catalog metadata.
func DefaultSeedTable() map[string][]string {
	return map[string][]string{
		// Display / condensed
		"Bebas Neue": {"Oswald", "Anton", "Teko", "Fjalla One"},
		"Anton":      {"Bebas Neue", "Oswald", "Black Ops One"},
		"Oswald":     {"Bebas Neue", "Anton", "Teko"},

		// Sans-serif
		"Roboto":     {"Open Sans", "Lato", "Montserrat", "Inter"},
		"Open Sans":  {"Roboto", "Lato", "Source Sans Pro"},
		"Lato":       {"Roboto", "Open Sans", "Nunito"},
		"Montserrat": {"Poppins", "Raleway", "Roboto"},
		"Poppins":    {"Montserrat", "Inter", "Nunito Sans"},
		"Inter":      {"Roboto", "Poppins", "Open Sans"},

		// Serif
		"Playfair Display": {"Libre Baskerville", "Lora", "Merriweather"},
		"Merriweather":     {"Lora", "Playfair Display", "PT Serif"},
		"Lora":             {"Merriweather", "Playfair Display", "Libre Baskerville"},
	}
}
