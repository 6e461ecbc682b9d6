package main

import "github.com/notargets/gobspline/cmd"

func main() {
	cmd.Execute()
}
