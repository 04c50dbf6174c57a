package main

import "github.com/meysamhadeli/revai/cmd"

func main() {
	cmd.Execute()
}
