package wallet

import "fmt"

// FormatINR renders a paise amount as rupees, dropping a zero paise part
// so whole amounts read "₹400", not "₹400.00".
func FormatINR(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	rupees := paise / 100
	rest := paise % 100
	if rest == 0 {
		return fmt.Sprintf("%s₹%d", sign, rupees)
	}
	return fmt.Sprintf("%s₹%d.%02d", sign, rupees, rest)
}
