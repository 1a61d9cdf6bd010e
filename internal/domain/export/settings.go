package export

// Settings carries the externally configurable lookup data used by the SKU
// grammar and bundle aggregation. Values are threaded explicitly into every
// function that needs them; the literal defaults below are used whenever the
// external config source yields nothing.
type Settings struct {
	// LetterOrder is the canonical ordering of pizza-pack SKU letters,
	// used to sort bundle sku parts.
	LetterOrder []string

	// ComboSKUs maps a combo code to the warehouse SKU suffix.
	ComboSKUs map[string]string

	// GhostBins are bin codes never emitted as line items and never
	// counted toward a bundle's pricing quantity.
	GhostBins map[string]struct{}
}

// DefaultLetterOrder is the built-in pizza-pack SKU letter ordering.
var DefaultLetterOrder = []string{"C", "E", "S", "A", "R", "N", "M", "B", "I", "V", "H", "L", "X", "Y", "Z"}

// DefaultGhostBins are the built-in administrative bins.
var DefaultGhostBins = []string{
	"LOUS-2DD",
	"LOUS-4DD",
	"LOUS-6DD",
	"LOUS-2TH1DD",
	"LOUS-2TH5DD",
	"LOUS-4TH",
	"LOUS-6TH",
	"LOUS-6DDTH",
	"LOUS-7TH",
}

// DefaultComboSKUs is the bundled combo-code lookup table.
var DefaultComboSKUs = map[string]string{
	"CC":   "-2C",
	"CS":   "-1C1S",
	"CE":   "-1C1E",
	"CP":   "-1C1P",
	"SS":   "-2S",
	"SE":   "-1S1E",
	"SP":   "-1S1P",
	"EE":   "-2E",
	"EP":   "-1E1P",
	"PP":   "-2P",
	"CCC":  "-3C",
	"CCS":  "-2C1S",
	"CSS":  "-1C2S",
	"SSS":  "-3S",
	"CCCC": "-4C",
	"CCSS": "-2C2S",
	"SSSS": "-4S",
	"GH":   "-GH",
	"HG":   "-GH",
}

// DefaultSettings returns the built-in fallback settings.
func DefaultSettings() Settings {
	bins := make(map[string]struct{}, len(DefaultGhostBins))
	for _, bin := range DefaultGhostBins {
		bins[bin] = struct{}{}
	}
	return Settings{
		LetterOrder: DefaultLetterOrder,
		ComboSKUs:   DefaultComboSKUs,
		GhostBins:   bins,
	}
}

// IsGhostBin reports whether bin is in the ghost-bin set.
func (s Settings) IsGhostBin(bin string) bool {
	_, ok := s.GhostBins[bin]
	return ok
}

// letterIndex returns the position of the first character of part in the
// canonical letter order. Characters absent from the order return -1 and
// therefore sort before all known characters; this matches the historical
// behavior and is deliberately left uncorrected.
func (s Settings) letterIndex(part string) int {
	if part == "" {
		return -1
	}
	first := string([]rune(part)[0])
	for i, letter := range s.LetterOrder {
		if letter == first {
			return i
		}
	}
	return -1
}
