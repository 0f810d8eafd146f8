package main

import "github.com/podkeep/podkeep/cmd"

func main() {
	cmd.Execute()
}
