package main

import "github.com/q-controller/imgctl/src/imgctl/cmd"

func main() {
	cmd.Execute()
}
