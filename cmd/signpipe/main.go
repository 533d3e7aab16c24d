package main

import "github.com/bhoomipatni/TheHandStand/internal/cli"

func main() {
	cli.Execute()
}
