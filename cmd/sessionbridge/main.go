package main

import "sessionbridge/cmd/sessionbridge/cmd"

func main() {
	cmd.Execute()
}
