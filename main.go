package main

import "github.com/bespinosaaco/KPAdmin/cmd"

func main() {
	cmd.Execute()
}
