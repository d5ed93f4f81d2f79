package main

import "github.com/KaramelBytes/loomstat/cmd"

func main() {
	cmd.Execute()
}
