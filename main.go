package main

import "golang-kvconfig/cmd"

func main() {
	cmd.Execute()
}
