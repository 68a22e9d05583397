package main

import "pubctl/cmd"

func main() {
	cmd.Execute()
}
