package main

import "github.com/KaramelBytes/paperstack-cli/cmd"

func main() {
	cmd.Execute()
}
