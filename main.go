package main

import "github.com/fakeyudi/please/cmd"

func main() {
	cmd.Execute()
}
