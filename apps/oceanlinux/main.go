package main

import "github.com/sulphurninja/oceanlinux-sub001/internal/cli"

func main() {
	cli.Execute()
}
