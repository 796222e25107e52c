package main

import "github.com/diogo/folio/internal/commands"

func main() {
	commands.Execute()
}
