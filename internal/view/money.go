package view

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// FormatMoney renders an amount with two decimals and English digit grouping.
func FormatMoney(amount float64) string {
	return printer.Sprint(number.Decimal(amount, number.Scale(2)))
}
