package main

import "github.com/user/csrf-diag/cmd"

func main() {
	cmd.Execute()
}
