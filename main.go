package main

import "roster-sync/cmd"

func main() {
	cmd.Execute()
}
