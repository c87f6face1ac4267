package main

import "github.com/gaurav-prasanna/canonhtml/cmd"

func main() {
	cmd.Execute()
}
