package main

import "github.com/FrankDatema/MindHop/cmd/mindhop/root"

func main() {
	root.Execute()
}
