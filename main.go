package main

import "github.com/timnew/Fuel-price/cmd"

func main() {
	cmd.Execute()
}
