package color

import (
	"fmt"

	"github.com/muesli/termenv"
)

// profile is the colour profile of stdout; NO_COLOR and dumb terminals give Ascii.
var profile = termenv.EnvColorProfile()

func EnableColor(enable bool) {
	switch {
	case !enable:
		profile = termenv.Ascii
	case profile == termenv.Ascii:
		profile = termenv.ANSI256
	}
}

func IsColorEnabled() bool {
	return profile != termenv.Ascii
}

func Colorize(c termenv.Color, text string) string {
	return profile.String(text).Foreground(c).String()
}

func RedText(text string) string {
	return Colorize(termenv.ANSIBrightRed, text)
}

func GreenText(text string) string {
	return Colorize(termenv.ANSIGreen, text)
}

func YellowText(text string) string {
	return Colorize(termenv.ANSIYellow, text)
}

func CyanText(text string) string {
	return Colorize(termenv.ANSICyan, text)
}

func GrayText(text string) string {
	return Colorize(termenv.ANSIBrightBlack, text)
}

func BoldText(text string) string {
	return profile.String(text).Bold().String()
}

func Error(message string) string {
	return RedText("Error: ") + message
}

func Success(message string) string {
	return GreenText(message)
}

// Listing renders one program line with its 1-based number, marking the
// line that executes next.
func Listing(n int, line string, current bool) string {
	num := fmt.Sprintf("%3d", n)
	if current {
		return YellowText("▶ "+num) + " " + BoldText(line)
	}
	return "  " + GrayText(num) + " " + line
}
