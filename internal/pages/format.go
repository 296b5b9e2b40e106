package pages

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Korean)

// Won formats a price in Korean won, e.g. "1,290,000원".
func Won(price int) string {
	return printer.Sprintf("%d원", price)
}

// Count formats a number with digit grouping.
func Count(n int) string {
	return printer.Sprintf("%d", n)
}

func toastColor(kind string) string {
	switch kind {
	case "success":
		return "bg-green-600"
	case "error":
		return "bg-red-600"
	case "warning":
		return "bg-yellow-600"
	default:
		return "bg-blue-600"
	}
}
