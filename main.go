package main

import "breakaudit/cmd"

func main() {
	cmd.Execute()
}
