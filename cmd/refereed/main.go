package main

import "github.com/refereehq/refereed/internal/cli"

func main() {
	cli.Execute()
}
