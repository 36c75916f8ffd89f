package main

import "github.com/itsmostafa/wingman/cmd"

func main() {
	cmd.Execute()
}
