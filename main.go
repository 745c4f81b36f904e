package main

import "adac/cmd"

func main() {
	cmd.Execute()
}
