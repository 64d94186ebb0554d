package ledger

// FiatCurrencies lists the fiat denominations the deposit flow accepts.
// Each currency is held in its own balance row; there is no conversion
// between them, and coin purchases spend USD only.
var FiatCurrencies = []string{
	"USD", "EUR", "GBP", "JPY", "UAH",
	"CAD", "AUD", "CHF", "CNY", "INR",
}

// ValidFiatCurrency reports whether code is a supported fiat currency.
func ValidFiatCurrency(code string) bool {
	for _, c := range FiatCurrencies {
		if c == code {
			return true
		}
	}
	return false
}
