package main

import (
	"flag"
	"fmt"
	"os"

	"bookshelf/cmd/tui/ui"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	url := flag.String("url", "http://127.0.0.1:3000", "Bookshelf API base URL")
	flag.Parse()

	p := tea.NewProgram(ui.NewRootModel(*url), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "bookshelf tui: %v\n", err)
		os.Exit(1)
	}
}
