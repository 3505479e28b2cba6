package main

import "eduquest/cmd/eq/root"

func main() {
	root.Execute()
}
