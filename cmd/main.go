package main

import "portfoliosync/cli"

func main() {
	cli.Execute()
}
