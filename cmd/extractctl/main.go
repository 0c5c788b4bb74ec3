package main

import "fieldextract/internal/cli"

func main() {
	cli.Execute()
}
