package main

import (
	"tunescout/cmd"
)

func main() {
	cmd.Execute()
}
