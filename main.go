package main

import "github.com/BatikanHyt/postbench/cmd"

func main() {
	cmd.Execute()
}
