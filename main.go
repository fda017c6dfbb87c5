package main

import "github.com/StinkyLord/glycoproteoform-builder/cmd"

func main() {
	cmd.Execute()
}
