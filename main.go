package main

import "github.com/KaramelBytes/mortstat/cmd"

func main() {
	cmd.Execute()
}
