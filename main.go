package main

import "github.com/agentmd/agentmd/cmd"

func main() {
	cmd.Execute()
}
