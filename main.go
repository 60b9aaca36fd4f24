package main

import "github.com/mj1618/skipad/cmd"

func main() {
	cmd.Execute()
}
