package main

import "github.com/lexcodex/hogar/app/cmd"

func main() {
	cmd.Execute()
}
