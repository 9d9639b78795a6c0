package main

import "github.com/foldermover/foldermover/cmd"

func main() {
	cmd.Execute()
}
