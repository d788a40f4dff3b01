package main

import (
	"context"

	"rentscan/cmd/rentscan/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
