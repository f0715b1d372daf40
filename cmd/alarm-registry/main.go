package main

import "github.com/VoidAutomata/alarm-registry/cmd/alarm-registry/cmd"

func main() {
	cmd.Execute()
}
