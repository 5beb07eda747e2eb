package main

import "github.com/OpenTraceLab/swmc/cmd/swmc/cmd"

func main() {
	cmd.Execute()
}
