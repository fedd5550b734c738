package main

import "github.com/MeKo-Tech/tabula/cmd/tabula/cmd"

func main() {
	cmd.Execute()
}
