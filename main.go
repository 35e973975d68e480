package main

import "github.com/jfmyers9/tracklog/cmd"

func main() {
	cmd.Execute()
}
