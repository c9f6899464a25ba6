package main

import "github.com/baditaflorin/go_subs_normalize/internal/cli"

func main() {
	cli.Execute()
}
