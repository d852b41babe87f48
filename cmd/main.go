package main

import "github.com/biggslaundromat/laundromat/internal/cmd"

func main() {
	cmd.Execute()
}
