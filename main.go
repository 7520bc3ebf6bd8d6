package main

import "chronicle/cmd"

func main() {
	cmd.Execute()
}
