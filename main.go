package main

import "envctl/internal/cli"

func main() {
	cli.Execute()
}
