package main

import "github.com/ctleads/harvester/cmd/harvester/cmd"

func main() {
	cmd.Execute()
}
