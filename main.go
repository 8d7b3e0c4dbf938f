package main

import "billwatch/cmd"

func main() {
	cmd.Execute()
}
