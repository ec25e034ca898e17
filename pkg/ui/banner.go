package ui

import "strings"

const (
	reset      = "\033[0m"
	bold       = "\033[1m"
	frostWhite = "\033[38;5;195m"
	iceBlue    = "\033[38;5;117m"
	glacier    = "\033[38;5;81m"
	cobalt     = "\033[38;5;33m"
	deepIndigo = "\033[38;5;61m"
	slate      = "\033[38;5;244m"
)

// Banner renders a colored freezer wordmark for terminal output.
func Banner() string {
	var b strings.Builder

	letters := [][]string{
		{"███████╗", "██╔════╝", "█████╗  ", "██╔══╝  ", "██║     ", "╚═╝     "},
		{"██████╗ ", "██╔══██╗", "██████╔╝", "██╔══██╗", "██║  ██║", "╚═╝  ╚═╝"},
		{"███████╗", "██╔════╝", "█████╗  ", "██╔══╝  ", "███████╗", "╚══════╝"},
		{"███████╗", "██╔════╝", "█████╗  ", "██╔══╝  ", "███████╗", "╚══════╝"},
		{"███████╗", "╚══███╔╝", "  ███╔╝ ", " ███╔╝  ", "███████╗", "╚══════╝"},
		{"███████╗", "██╔════╝", "█████╗  ", "██╔══╝  ", "███████╗", "╚══════╝"},
		{"██████╗ ", "██╔══██╗", "██████╔╝", "██╔══██╗", "██║  ██║", "╚═╝  ╚═╝"},
	}
	gradient := []string{frostWhite, iceBlue, glacier, cobalt, deepIndigo}
	rows := make([]string, len(letters[0]))
	for i, letter := range letters {
		color := gradient[i%len(gradient)]
		for row := 0; row < len(letter); row++ {
			rows[row] += color + letter[row] + " "
		}
	}
	for _, line := range rows {
		b.WriteString(bold + line + reset + "\n")
	}

	b.WriteString("\n")
	b.WriteString(bold + iceBlue + "freezer" + reset + slate + "  •  stop the biggest memory users, keep their state" + reset + "\n\n")

	return b.String()
}

// Header returns the banner for terminals and a plain title line otherwise.
func Header(color bool) string {
	if color {
		return Banner()
	}
	return "freezer\n\n"
}
