package main

import "github.com/yiinote/ethereum-sdk/cmd"

func main() {
	cmd.Execute()
}
