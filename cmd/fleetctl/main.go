package main

import "github.com/ukydev/fleet-dashboard/internal/cli"

func main() {
	cli.Execute()
}
