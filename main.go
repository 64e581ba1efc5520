package main

import "github.com/iksnae/pairide/cmd"

func main() {
	cmd.Execute()
}
