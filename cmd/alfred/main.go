package main

import (
	"alfred/cmd/alfred/commands"
	"alfred/lib/osutil"
)

func main() {
	commands.ExecuteContext(osutil.SignalContext())
}
