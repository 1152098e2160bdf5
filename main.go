package main

import "github.com/Alturino/eats/cmd"

func main() {
	cmd.Start()
}
